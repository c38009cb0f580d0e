// Package openapi turns the request body of an OpenAPI 3 operation into a
// form schema. Documents are loaded with kin-openapi; only the object schema
// of the request body is used.
//
// Properties map to fields by type and format:
//
//	string                   text (minLength/maxLength become rules)
//	string, format email     email with an email rule
//	string, format password  password with a password rule
//	string, format date      date
//	string, format textarea  textarea
//	integer, number          number
//	boolean                  single checkbox
//	any scalar with enum     select
//	array of enum            checkbox group
//
// A property carrying x-formflow-formula becomes a derived field. Its parents
// come from x-formflow-parents, or from the identifiers in the formula when the
// extension is absent.
package openapi
