// Package compiler turns CUE entity definitions into registry entries.
//
// Entities live under a top-level "entity" struct:
//
//	entity: Post: {
//		type: "PostEntity"
//		default: relations: author: {}
//		fields: [
//			"id",
//			{name: "title", include: "withTitle"},
//			{name: "body", skip: {custom: "isSummary"}},
//			{name: "author", ref: "UserEntity"},
//		]
//	}
//
// CompileEntity handles one entity, CompileEntities walks the whole
// struct, and Apply feeds the results to a registry.
package compiler
