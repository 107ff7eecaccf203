/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package casing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier into its words. Separators are any non letter/digit
// runes; case changes start a new word and a run of capitals is kept together as an
// acronym ("HTTPServer" -> "HTTP", "Server").
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

// Snake converts an identifier to snake_case: "UserProfile" -> "user_profile".
func Snake(s string) string {
	lower := cases.Lower(language.Und)
	words := Words(s)
	for i, w := range words {
		words[i] = lower.String(w)
	}
	return strings.Join(words, "_")
}

// Pascal converts an identifier to PascalCase: "user_profile" -> "UserProfile".
func Pascal(s string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// Camel converts an identifier to camelCase: "user_profile" -> "userProfile".
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	r := []rune(p)
	return cases.Lower(language.Und).String(string(r[0])) + string(r[1:])
}

// Capitalize upper-cases the first rune and leaves the rest alone.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return cases.Upper(language.Und).String(string(r[0])) + string(r[1:])
}
