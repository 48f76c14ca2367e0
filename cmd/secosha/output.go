package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

// describe renders an error for the terminal, appending field details for validation failures.
func describe(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err.Error()
	}
	msg := typed.Message()
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized:
		msg = "not signed in; run `secosha login` first"
	case pkgerrors.CodeNetwork:
		msg = "cannot reach the marketplace: " + typed.Message()
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		if raw, isMap := typed.Details().(map[string]any); isMap {
			details = map[string]string{}
			for k, v := range raw {
				details[k] = fmt.Sprint(v)
			}
			ok = true
		}
	}
	if ok && len(details) > 0 {
		fields := make([]string, 0, len(details))
		for _, key := range sortedKeys(details) {
			fields = append(fields, fmt.Sprintf("%s: %s", key, details[key]))
		}
		msg += " (" + strings.Join(fields, "; ") + ")"
	}
	return msg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// prompt reads one trimmed line from in after printing label to out.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}
