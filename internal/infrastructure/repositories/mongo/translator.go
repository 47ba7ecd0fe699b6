package mongo

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"dataaccess-backend/internal/domain/search"
)

// IDField is the document key of the entity id
const IDField = "_id"

// Translator renders terms as BSON clauses. RenderFragment returns the clause as
// extended JSON with placeholder names in place of values; Filter builds the
// executable document from the same clause shapes with the coerced values.
type Translator struct{}

// Name of the dialect
func (Translator) Name() string {
	return "mongodb"
}

// Conjunction joins term fragments inside an $and array
func (Translator) Conjunction() string {
	return ","
}

// auditKeys are the document keys of the audit fields, by lower-cased filter key
var auditKeys = map[string]string{
	"id":               IDField,
	"version":          "version",
	"createdby":        "createdBy",
	"createdate":       "createDate",
	"lastmodifiedby":   "lastModifiedBy",
	"lastmodifieddate": "lastModifiedDate",
}

// Field maps a filter key to a document key. Audit fields match ignoring case, as
// on the other backends.
func Field(key string) string {
	prefix, leaf := "", key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		prefix, leaf = key[:i+1], key[i+1:]
	}
	if f, ok := auditKeys[strings.ToLower(leaf)]; ok {
		return prefix + f
	}
	return key
}

// RenderFragment renders the clause of one term with @name placeholders
func (t Translator) RenderFragment(term search.FilterTerm, pos int) (string, error) {
	if err := search.ValidateField(term.Key()); err != nil {
		return "", err
	}
	params, err := t.CoerceParams(term, pos)
	if err != nil {
		return "", err
	}
	refs := make([]any, 0, len(params))
	for _, p := range params {
		refs = append(refs, "@"+p.Name)
	}

	raw, err := bson.MarshalExtJSON(clause(term, refs, false), false, false)
	if err != nil {
		return "", errors.Wrapf(err, "render %s", term)
	}
	return string(raw), nil
}

// CoerceParams returns one named parameter per value
func (Translator) CoerceParams(term search.FilterTerm, pos int) ([]search.Param, error) {
	return search.NamedParams(term, pos), nil
}

// Filter builds the query document of all terms. Terms are combined with $and so
// duplicate keys stay separate conditions.
func (t Translator) Filter(terms []search.FilterTerm) (bson.D, error) {
	clauses := bson.A{}
	for _, term := range terms {
		if err := search.ValidateField(term.Key()); err != nil {
			return nil, err
		}
		clauses = append(clauses, clause(term, search.CoerceValues(term), true))
	}

	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0].(bson.D), nil
	default:
		return bson.D{{Key: "$and", Value: clauses}}, nil
	}
}

// Sort renders sort fields as a sort document
func (Translator) Sort(fields []search.SortField) bson.D {
	if len(fields) == 0 {
		return nil
	}
	ret := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		ret = append(ret, bson.E{Key: Field(f.Field), Value: dir})
	}
	return ret
}

// clause builds the condition of one term over values; quote escapes regex
// metacharacters when values are real input rather than placeholders
func clause(term search.FilterTerm, values []any, quote bool) bson.D {
	key := Field(term.Key())

	switch {
	case term.IsNull() && search.IsIntegerField(term.Key()):
		return bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: bson.A{values[0]}}}}}
	case term.IsNull():
		return bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: bson.A{nil, values[0]}}}}}
	case search.IsIntegerField(term.Key()):
		return bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: bson.A(values)}}}}
	}

	alternatives := bson.A{}
	for _, v := range values {
		pattern, _ := v.(string)
		if quote {
			pattern = regexp.QuoteMeta(pattern)
		}
		alternatives = append(alternatives, bson.D{{Key: key, Value: bson.D{{Key: "$regex", Value: pattern}}}})
	}
	if len(alternatives) == 1 {
		return alternatives[0].(bson.D)
	}
	return bson.D{{Key: "$or", Value: alternatives}}
}

var _ search.FilterTranslator = Translator{}
