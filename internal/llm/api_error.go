package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	goopenai "github.com/meguminnnnnnnnn/go-openai"
	"google.golang.org/genai"
)

// errEmptyChoices is how the OpenAI client reports a reply with no choices.
const errEmptyChoices = "received empty choices"

// providerMessage returns the message the provider put in its error payload.
func providerMessage(err error) (string, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}

	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) && geminiErr.Message != "" {
		return geminiErr.Message, true
	}
	return "", false
}

// statusCode returns the HTTP status a provider error was received with.
func statusCode(err error) (int, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return apiErr.HTTPStatusCode, true
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return reqErr.HTTPStatusCode, true
	}

	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) && geminiErr.Code > 0 {
		return geminiErr.Code, true
	}
	return 0, false
}

// errorBodyTransport turns a 200 response whose JSON body is an error object
// into a failed response, so the client reports the provider's message
// instead of an empty choice list. OpenRouter answers this way when the
// upstream model fails.
type errorBodyTransport struct {
	base http.RoundTripper
}

func newErrorBodyTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &errorBodyTransport{base: base}
}

func (t *errorBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK || !isJSON(resp.Header.Get("Content-Type")) {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	message, code, ok := errorPayload(body)
	if !ok {
		return resp, nil
	}

	rewritten, err := json.Marshal(goopenai.ErrorResponse{Error: &goopenai.APIError{Message: message}})
	if err != nil {
		return resp, nil
	}
	resp.StatusCode = code
	resp.Status = fmt.Sprintf("%d %s", code, http.StatusText(code))
	resp.Body = io.NopCloser(bytes.NewReader(rewritten))
	resp.ContentLength = int64(len(rewritten))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// errorPayload reads {"error": {"message": ..., "code": ...}} or
// {"error": "..."}. code is the status the error should be reported with.
func errorPayload(body []byte) (message string, code int, ok bool) {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return "", 0, false
	}

	code = http.StatusBadGateway
	var obj struct {
		Message string      `json:"message"`
		Code    interface{} `json:"code"`
	}
	if err := json.Unmarshal(envelope.Error, &obj); err == nil {
		if n, isNum := obj.Code.(float64); isNum && n >= 400 && n < 600 {
			code = int(n)
		}
		message = obj.Message
	} else if err := json.Unmarshal(envelope.Error, &message); err != nil {
		return "", 0, false
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", 0, false
	}
	return message, code, true
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
