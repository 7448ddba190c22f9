// Package compiler turns clause tables written in CUE into ir.TableSpec
// values and checks them against schema rules.
//
// A table file declares tables under the top-level "table" field:
//
//	table: classify: {
//		doc: "describe a number"
//		clauses: [
//			{patterns: [0], handler: {fn: "lambda.k", args: ["zero"]}},
//			{patterns: [{type: "int"}], handler: {fn: "lambda.k", args: ["int"]}},
//			{patterns: ["_"], handler: "lambda.id"},
//		]
//	}
//
// Pattern forms: "_" (wildcard), any concrete scalar, list or plain struct
// (literal), {literal: x}, {type: tag}, {just: pattern} and
// {pred: "module.name"}.
package compiler
