package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // disable colors for easier assertions
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		Debug("debug message")
		Info("info message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "info message")
	})

	t.Run("ErrorLevelShowsOnlyErrors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.NotContains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("SetLevelIsCaseInsensitive", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("debug")
		Debug("test message")
		assert.Contains(t, buf.String(), "test message")

		SetLevel("INFO")
	})

	t.Run("InvalidLevelIsIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("VERBOSE")

		Info("still here")
		assert.Contains(t, buf.String(), "still here")
	})
}

func TestStructuredFields(t *testing.T) {
	t.Run("TextFormatRendersKeyValuePairs", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		Info("user created", KeyUserID, "u-123", KeyRPCCode, "OK")

		output := buf.String()
		assert.Contains(t, output, "user_id=u-123")
		assert.Contains(t, output, "rpc_code=OK")
	})

	t.Run("JSONFormatProducesValidJSON", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("json")
		defer SetFormat("text")

		Info("user created", KeyUserID, "u-123")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "user created", entry["msg"])
		assert.Equal(t, "u-123", entry[KeyUserID])
	})
}

func TestContextLogging(t *testing.T) {
	t.Run("CtxVariantsPrependRequestFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		lc := NewLogContext("/user.v1.UserService/GetUserById", "10.0.0.7")
		lc = lc.WithRequestID("req-42").WithUserID("u-123")
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "lookup complete")

		output := buf.String()
		assert.Contains(t, output, "rpc_method=/user.v1.UserService/GetUserById")
		assert.Contains(t, output, "client_ip=10.0.0.7")
		assert.Contains(t, output, "request_id=req-42")
		assert.Contains(t, output, "user_id=u-123")
	})

	t.Run("NoLogContextIsHarmless", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		InfoCtx(context.Background(), "plain message")
		assert.Contains(t, buf.String(), "plain message")
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		lc := NewLogContext("/user.v1.UserService/CreateUser", "10.0.0.1")
		clone := lc.WithUserID("u-9")

		assert.Empty(t, lc.UserID)
		assert.Equal(t, "u-9", clone.UserID)
		assert.Equal(t, lc.Method, clone.Method)
	})
}

func TestEmailDigest(t *testing.T) {
	t.Run("DigestIsStableAndCaseInsensitive", func(t *testing.T) {
		a := DigestEmail("Alice@Example.com")
		b := DigestEmail("alice@example.com")
		assert.Equal(t, a, b)
		assert.Len(t, a, 12)
	})

	t.Run("DigestNeverContainsAddress", func(t *testing.T) {
		d := DigestEmail("alice@example.com")
		assert.NotContains(t, d, "alice")
		assert.NotContains(t, d, "example")
	})

	t.Run("DistinctAddressesGetDistinctDigests", func(t *testing.T) {
		assert.NotEqual(t, DigestEmail("a@example.com"), DigestEmail("b@example.com"))
	})

	t.Run("AttrUsesDigestNotAddress", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		Info("lookup", EmailDigest("alice@example.com"))

		output := buf.String()
		assert.NotContains(t, output, "alice@example.com")
		assert.Contains(t, output, "email_digest=")
	})
}

func TestErrAttr(t *testing.T) {
	t.Run("NilErrorProducesEmptyAttr", func(t *testing.T) {
		attr := Err(nil)
		assert.Empty(t, attr.Key)
	})

	t.Run("ErrorMessageIsRendered", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		Info("operation failed", KeyError, errors.New("boom").Error())
		assert.True(t, strings.Contains(buf.String(), "error=boom"))
	})
}
