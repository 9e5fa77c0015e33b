// Package fieldpath parses and resolves dotted field paths against nested
// records.
//
// A dotted path such as "properties.firstname" addresses the "firstname" key
// inside the "properties" object of a record decoded from JSON or YAML:
//
//	p, err := fieldpath.Parse("properties.firstname")
//	if err != nil {
//	    return err // *InvalidPathError
//	}
//
//	v, ok := fieldpath.Resolve(record, p)   // ok == false when absent
//	fieldpath.Assign(out, p, "Jo")          // creates "properties" as needed
//
// Missing data is expected, not exceptional: Resolve reports absence with a
// boolean rather than an error. Only malformed path strings fail.
package fieldpath
