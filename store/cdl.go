package store

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Dump writes a CDL rendering of s, in the layout printed by ncdump.
func Dump(w io.Writer, name string, s Store) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "netcdf %s {\n", name)

	if vts := s.VLTypes(); len(vts) > 0 {
		fmt.Fprintln(bw, "types:")
		for _, vt := range vts {
			fmt.Fprintf(bw, "  %s(*) %s ;\n", vt.Base, vt.Name)
		}
	}

	if dims := s.Dimensions(); len(dims) > 0 {
		fmt.Fprintln(bw, "dimensions:")
		for _, d := range dims {
			fmt.Fprintf(bw, "\t%s = %d ;\n", d.Name, d.Len)
		}
	}

	vars := s.Variables()
	if len(vars) > 0 {
		fmt.Fprintln(bw, "variables:")
		for _, v := range vars {
			fmt.Fprintf(bw, "\t%s %s", v.Type(), v.Name())
			if dims := v.Dims(); len(dims) > 0 {
				fmt.Fprintf(bw, "(%s)", strings.Join(dims, ", "))
			}
			fmt.Fprintln(bw, " ;")
			for _, a := range v.AttrNames() {
				val, _ := v.Attr(a)
				fmt.Fprintf(bw, "\t\t%s:%s = %s ;\n", v.Name(), a, formatAttr(val))
			}
		}
	}

	if names := s.AttrNames(); len(names) > 0 {
		fmt.Fprintln(bw, "\n// global attributes:")
		for _, a := range names {
			val, _ := s.Attr(a)
			fmt.Fprintf(bw, "\t\t:%s = %s ;\n", a, formatAttr(val))
		}
	}

	wroteData := false
	for _, v := range vars {
		if v.Values() == nil {
			continue
		}
		if !wroteData {
			fmt.Fprintln(bw, "data:")
			wroteData = true
		}
		fmt.Fprintf(bw, "\n %s = %s ;\n", v.Name(), formatValues(v.Values()))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func formatAttr(v interface{}) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return formatValues(v)
}

func formatValues(v interface{}) string {
	switch vals := v.(type) {
	case []float64:
		return joinFloats(vals)
	case []int32:
		return joinInts(len(vals), func(i int) int64 { return int64(vals[i]) })
	case []int64:
		return joinInts(len(vals), func(i int) int64 { return vals[i] })
	case [][]float64:
		parts := make([]string, len(vals))
		for i, s := range vals {
			parts[i] = "{" + joinFloats(s) + "}"
		}
		return strings.Join(parts, ", ")
	case [][]int32:
		parts := make([]string, len(vals))
		for i, s := range vals {
			parts[i] = "{" + joinInts(len(s), func(j int) int64 { return int64(s[j]) }) + "}"
		}
		return strings.Join(parts, ", ")
	case [][]int64:
		parts := make([]string, len(vals))
		for i, s := range vals {
			parts[i] = "{" + joinInts(len(s), func(j int) int64 { return s[j] }) + "}"
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func joinFloats(s []float64) string {
	parts := make([]string, len(s))
	for i, f := range s {
		if math.IsNaN(f) {
			parts[i] = "NaN"
			continue
		}
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func joinInts(n int, at func(int) int64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.FormatInt(at(i), 10)
	}
	return strings.Join(parts, ", ")
}
