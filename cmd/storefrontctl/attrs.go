package main

import (
	"fmt"
	"strings"
)

type namedValues struct {
	Name   string
	Values []string
}

// parseAttrs reads repeated "Name=v1,v2" flags, keeping flag order.
func parseAttrs(flags []string) ([]namedValues, error) {
	out := make([]namedValues, 0, len(flags))
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("attribute %q must look like Name=value[,value]", f)
		}
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		out = append(out, namedValues{Name: name, Values: values})
	}
	return out, nil
}
