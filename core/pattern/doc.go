// Package pattern compiles brace-templated paths such as "folder/{a}/{b}.csv".
//
// A compiled Pattern is used in two directions:
//
//   - Forward: Glob() yields a wildcard expression ("folder/*/*.csv") handed to a
//     lister, and Format() substitutes field values back into the template.
//   - Reverse: Match() recovers the field values from concrete listed paths,
//     the inverse of Format().
//
// # Recursive Fields
//
// By default a field captures a single path segment. When compiled with
// recursive set, every placeholder becomes "**" in the glob and may capture
// path separators, so "{path}.csv" matches "nested/dir/1.csv" with
// path = "nested/dir/1".
//
// # Rejected Templates
//
// Templates without placeholders, with a repeated field name, or with two
// placeholders that touch ("{a}{b}") are rejected at compile time, since the
// split between adjacent fields cannot be recovered.
//
// # Usage
//
//	p, err := pattern.Compile("data/{year}/{id}.csv", false)
//	if err != nil {
//	    return err
//	}
//	p.Glob()                           // "data/*/*.csv"
//	values, ok := p.MatchOne("data/2024/7.csv")
//	path, err := p.Format(values)      // "data/2024/7.csv"
package pattern
