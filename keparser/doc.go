// Package keparser streams typed records out of KE EMu texexport dumps.
//
// An export file is a flat sequence of KEY=VALUE lines. Records are
// separated by a "###" line; multi-value fields appear as repeated keys
// with a 1-based index suffix (SecCanDisplay:1, SecCanDisplay:2, ...).
// The parser tokenises each line, resolves the raw key against the
// module's schema, coerces the value to its declared type and assembles
// one record at a time:
//
//	mod, err := provider.Resolve("ecatalogue")
//	if err != nil {
//	    return err
//	}
//	p, err := keparser.New(file, mod, keparser.Options{})
//	if err != nil {
//	    return err
//	}
//	for rec, err := range p.Records() {
//	    if err != nil {
//	        return err
//	    }
//	    process(rec)
//	}
//
// The grammar, coercion rules and flattening heuristics are specific to
// this one legacy dialect and are reproduced exactly, including its
// inconsistencies: numeric fields that fail to parse degrade to null,
// "1966 - 1966" style range values collapse to the repeated number, and
// noise lines without an "=" are logged and skipped.
//
// A Parser is single-use and single-threaded: it makes one forward pass
// over its input and holds no state beyond the stream position and the
// record under construction. The schema is read-only and may be shared
// by parsers running in parallel over different files.
package keparser
