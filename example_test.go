package dynsel_test

import (
	"context"
	"fmt"

	"github.com/roach88/dynsel"
)

func Example() {
	reg := dynsel.NewRegistry()
	reg.RegisterType("Post", "PostEntity", dynsel.ExpansionOptions{})
	reg.RegisterField("PostEntity", dynsel.FieldDescriptor{Name: "id"})
	reg.RegisterField("PostEntity", dynsel.FieldDescriptor{Name: "title"})
	reg.RegisterField("PostEntity", dynsel.FieldDescriptor{Name: "body", Include: dynsel.Flag("withBody")})

	eng := dynsel.New(reg)
	out, err := eng.SelectString(context.Background(), "{ posts { Post } }", &dynsel.CallOptions{
		Conditions: dynsel.Conditions{"withBody": true},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(out)
}

func Example_structTags() {
	type User struct {
		ID    string `dynsel:"id"`
		Email string `dynsel:"email,skip=anonymous"`
	}

	reg := dynsel.NewRegistry()
	if err := reg.RegisterStruct("User", User{}, dynsel.ExpansionOptions{}); err != nil {
		fmt.Println(err)
		return
	}

	out, err := dynsel.New(reg).SelectString(context.Background(), "{ me { User } }", &dynsel.CallOptions{
		Conditions: dynsel.Conditions{"anonymous": true},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(out)
}
