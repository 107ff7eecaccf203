/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User", "user"},
		{"UserProfile", "user_profile"},
		{"user_profile", "user_profile"},
		{"userProfile", "user_profile"},
		{"HTTPServer", "http_server"},
		{"OAuth2Token", "o_auth2_token"},
		{"order-items", "order_items"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Snake(tt.in))
		})
	}
}

func TestPascal(t *testing.T) {
	for _, in := range []string{"user_profile", "UserProfile", "userProfile", "user profile"} {
		assert.Equal(t, "UserProfile", Pascal(in), in)
	}
}

func TestCamel(t *testing.T) {
	assert.Equal(t, "userProfile", Camel("UserProfile"))
	assert.Equal(t, "userProfile", Camel("user_profile"))
	assert.Equal(t, "", Camel(""))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Hello world", Capitalize("hello world"))
	assert.Equal(t, "ÉTé", Capitalize("éTé"))
	assert.Equal(t, "", Capitalize(""))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"HTTP", "Server", "Config"}, Words("HTTPServerConfig"))
	assert.Equal(t, []string{"a", "b"}, Words("__a__b__"))
}
