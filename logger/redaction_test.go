package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRedactAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int // Expected total length
		hasStart bool // Should preserve start
		hasEnd   bool // Should preserve end
	}{
		{
			name:     "standard API key",
			input:    "sk-1234567890abcdef",
			wantLen:  19, // Length should match input
			hasStart: true,
			hasEnd:   true,
		},
		{
			name:     "long API key",
			input:    "sk-1234567890abcdefghijklmnopqrstuvwxyz",
			wantLen:  39,
			hasStart: true,
			hasEnd:   true,
		},
		{
			name:    "short key (all masked)",
			input:   "short",
			wantLen: 5,
		},
		{
			name:    "empty string",
			input:   "",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RedactAPIKey(tt.input)
			if len(result) != tt.wantLen {
				t.Errorf("RedactAPIKey(%q) length = %d, want %d (got %q)", tt.input, len(result), tt.wantLen, result)
			}
			if tt.hasStart && len(tt.input) > 8 {
				start := tt.input[:4]
				if !strings.HasPrefix(result, start) {
					t.Errorf("Result should preserve first 4 chars: want prefix %q, got %q", start, result)
				}
			}
			if tt.hasEnd && len(tt.input) > 8 {
				end := tt.input[len(tt.input)-4:]
				if !strings.HasSuffix(result, end) {
					t.Errorf("Result should preserve last 4 chars: want suffix %q, got %q", end, result)
				}
			}
		})
	}
}

func TestRedactSensitiveInfo(t *testing.T) {
	t.Run("should redact sk- prefixed API keys", func(t *testing.T) {
		text := "Using API key: sk-1234567890abcdefghij"
		result := RedactSensitiveInfo(text)

		if !strings.Contains(result, "sk-1234**********ghij") {
			t.Errorf("Expected API key to be redacted, got: %s", result)
		}
		if strings.Contains(result, "sk-1234567890abcdefghij") {
			t.Error("Original API key should not be present in result")
		}
	})

	t.Run("should redact key_ prefixed keys", func(t *testing.T) {
		text := "API configuration: key_abcdefghijklmnopqrstuvwxyz"
		result := RedactSensitiveInfo(text)

		if !strings.Contains(result, "key_abcd**********wxyz") {
			t.Errorf("Expected key_ to be redacted, got: %s", result)
		}
	})

	t.Run("should redact hex private keys with 0x prefix", func(t *testing.T) {
		text := "Private key: 0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
		result := RedactSensitiveInfo(text)

		if strings.Contains(result, "1234567890abcdef1234567890abcdef1234567890abcdef12") {
			t.Error("Middle part of private key should be redacted")
		}
		if !strings.Contains(result, "0x1234**********cdef") {
			t.Errorf("Expected redacted hex key, got: %s", result)
		}
	})

	t.Run("should redact plain hex private keys (without 0x)", func(t *testing.T) {
		text := "Key: abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
		result := RedactSensitiveInfo(text)

		if strings.Contains(result, "1234567890abcdef1234567890abcdef1234567890abcdef12") {
			t.Error("Middle part of hex key should be redacted")
		}
	})

	t.Run("should not modify text without sensitive info", func(t *testing.T) {
		text := "This is a normal log message with no sensitive data"
		result := RedactSensitiveInfo(text)

		if result != text {
			t.Errorf("Text without sensitive info should not be modified: %s", result)
		}
	})

	t.Run("should handle multiple keys in same text", func(t *testing.T) {
		text := "API: sk-1234567890abcdefghij and Private: 0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
		result := RedactSensitiveInfo(text)

		// Both should be redacted
		if strings.Contains(result, "sk-1234567890abcdefghij") {
			t.Error("First API key should be redacted")
		}
		if strings.Contains(result, "1234567890abcdef1234567890abcdef1234567890") {
			t.Error("Private key should be redacted")
		}
	})
}

// TestRedactingWriterInLogChain 日志输出链末端的打码写入器：
// 经由 zerolog 打出的任何日志行，落到底层输出前密钥已被打码
func TestRedactingWriterInLogChain(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(redactingWriter{out: &buf})

	logger.Error().
		Str("key", "sk-1234567890abcdefghij").
		Msg("venue place stop order: signature check failed")

	out := buf.String()
	if strings.Contains(out, "sk-1234567890abcdefghij") {
		t.Errorf("日志输出不应包含完整密钥: %s", out)
	}
	if !strings.Contains(out, "sk-1234**********ghij") {
		t.Errorf("日志输出应包含打码后的密钥: %s", out)
	}
	if !strings.Contains(out, "signature check failed") {
		t.Errorf("非敏感内容应原样保留: %s", out)
	}
}

func TestRedactionInVenueErrors(t *testing.T) {
	t.Run("should redact API keys in venue error messages", func(t *testing.T) {
		// Use realistic API key lengths (at least 16 chars after prefix to match pattern)
		msg := "place stop order: signature check failed for sk-1234567890abcdefghij"
		result := RedactSensitiveInfo(msg)

		if strings.Contains(result, "567890abcd") {
			t.Error("error message should have redacted middle part of API key")
		}
		if !strings.Contains(result, "place stop order") {
			t.Errorf("non-sensitive context should survive redaction, got: %s", result)
		}
	})

	t.Run("should redact secret keys in config dumps", func(t *testing.T) {
		msg := "loaded exchange config with key_abcd1234567890efghij"
		result := RedactSensitiveInfo(msg)

		if strings.Contains(result, "1234567890") {
			t.Error("config dump should have redacted middle part of key")
		}
	})
}
