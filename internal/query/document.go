package query

import "github.com/roach88/lift/internal/ir"

// Document renders q as plain data for canonical JSON output.
func Document(q Query) map[string]any {
	doc := map[string]any{"kind": q.Kind()}
	if m := q.Target(); m != nil {
		doc["model"] = m.Name
	}

	switch v := q.(type) {
	case ReadOne:
		putFilter(doc, v.Filter)
		doc["selection"] = v.Selection.document()
	case ReadMany:
		putFilter(doc, v.Filter)
		doc["selection"] = v.Selection.document()
		if v.Take != nil {
			doc["take"] = *v.Take
		}
	case CreateRecord:
		doc["args"] = argsDocument(v.Args)
	case CreateManyRecords:
		records := make([]any, len(v.Records))
		for i, r := range v.Records {
			records[i] = argsDocument(r)
		}
		doc["records"] = records
	case UpdateRecord:
		putFilter(doc, v.Filter)
		doc["args"] = argsDocument(v.Args)
		doc["selection"] = v.Selection.document()
	case UpdateManyRecords:
		putFilter(doc, v.Filter)
		doc["args"] = argsDocument(v.Args)
	case DeleteRecord:
		putFilter(doc, v.Filter)
		doc["selection"] = v.Selection.document()
	case DeleteManyRecords:
		putFilter(doc, v.Filter)
	}
	return doc
}

func putFilter(doc map[string]any, p Predicate) {
	if p != nil {
		doc["filter"] = predicateDocument(p)
	}
}

func argsDocument(args ir.IRObject) any {
	if args == nil {
		return ir.IRObject{}
	}
	return args
}
