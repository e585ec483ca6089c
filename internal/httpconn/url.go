package httpconn

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// batchPrefix is stripped from query parameter names.
const batchPrefix = "batch_"

var placeholderRE = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// buildURL expands path placeholders from params and appends the rest as
// query parameters. It reports whether the no_parse flag was set.
func buildURL(baseURL, path string, params types.Params) (string, bool, error) {
	used := make(map[string]bool, len(params))
	var missing string
	expanded := placeholderRE.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1:]
		v, ok := params[name]
		if !ok || v == nil {
			if missing == "" {
				missing = name
			}
			return m
		}
		used[name] = true
		return url.PathEscape(fmt.Sprint(v))
	})
	if missing != "" {
		return "", false, fmt.Errorf("%w: missing path parameter %q for %s", types.ErrInvalidParams, missing, path)
	}

	noParse := false
	if v, ok := params[types.ParamNoParse]; ok {
		b, _ := v.(bool)
		noParse = b
		used[types.ParamNoParse] = true
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if !used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		name := strings.TrimPrefix(k, batchPrefix)
		for _, s := range queryValues(params[k]) {
			q.Add(name, s)
		}
	}

	target := baseURL + expanded
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	return target, noParse, nil
}

// queryValues renders v as one string per query repetition. Slices and
// arrays repeat; nil yields nothing.
func queryValues(v any) []string {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, fmt.Sprint(rv.Index(i).Interface()))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
