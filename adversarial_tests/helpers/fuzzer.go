package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer provides utilities for generating adversarial input strings
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new Fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// FuzzKeyword generates search keywords that must reach the server intact
// as a single query parameter.
func (f *Fuzzer) FuzzKeyword() []string {
	return []string{
		// Query string smuggling
		"builder&limit=100",
		"builder&keyword=admin",
		"builder#fragment",
		"builder?limit=100",
		"a=b",
		"100%",
		"%26limit%3D100",

		// Path traversal
		"../../v1/users/1",
		"..%2F..%2Fv1%2Fusers",

		// Unicode
		"café",
		"тест",
		"测试",
		"🚀rocket",
		"test\u202Eadmin",

		// Whitespace
		" padded ",
		"tab\tinside",
		"plus+sign",

		// Length boundary
		strings.Repeat("k", 50),
	}
}

// FuzzInvalidKeyword generates keywords the client must reject locally
func (f *Fuzzer) FuzzInvalidKeyword() []string {
	return []string{
		"",
		" ",
		"\t\n",
		strings.Repeat("k", 51),
		strings.Repeat("漢", 20),
	}
}

// FuzzSecurityCookie generates cookie values that would corrupt the Cookie
// header or split the request.
func (f *Fuzzer) FuzzSecurityCookie() []string {
	return []string{
		"",
		"   ",
		"abc; other=1",
		"abc\r\nX-Injected: 1",
		"abc\nSet-Cookie: evil",
		`abc"quoted`,
		`abc\escaped`,
	}
}

// FuzzUserAgent generates malicious user agent strings
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		"",
		strings.Repeat("A", 257),
		strings.Repeat("A", 10000),
	}
}

// FuzzLimit generates page sizes Roblox does not accept
func (f *Fuzzer) FuzzLimit() []int {
	return []int{-100, -1, 0, 1, 9, 11, 24, 26, 49, 51, 99, 101, 1000, int(^uint(0) >> 1)}
}

// FuzzID generates identifiers that are not valid Roblox ids
func (f *Fuzzer) FuzzID() []int64 {
	return []int64{0, -1, -261, -1 << 63}
}

// GenerateRandomString generates a random string of the given length
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	charset := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if includeSpecial {
		charset += "!@#$%^&*()_+-=[]{}|;':\",./<>?`~ "
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharString generates a string with various control characters
func (f *Fuzzer) GenerateControlCharString() []string {
	var results []string
	for i := 0; i < 32; i++ {
		char := rune(i)
		if unicode.IsControl(char) {
			results = append(results, "test"+string(char)+"string")
		}
	}
	results = append(results, "test"+string(rune(127))+"string")
	return results
}

// GenerateUnicodeAttacks generates strings with various Unicode attack patterns
func (f *Fuzzer) GenerateUnicodeAttacks() []string {
	return []string{
		"test\u200Bstring",    // Zero-width space
		"test\uFEFFstring",    // Zero-width no-break space
		"test\u202Estring",    // Right-to-left override
		"a\u0301\u0302\u0303", // Multiple combining marks
		"cafe\u0301",          // e + combining accent
		"R\u043Eblox",         // Cyrillic o
		"test\u0000string",
	}
}
