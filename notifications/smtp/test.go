package smtp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	searchInboxTestEndpoint = "http://%s:%d/api/v2/search?kind=to&query=%s"
	clearInboxTestEndpoint  = "http://%s:%d/api/v1/messages"
)

// TestMessage is a message as stored by the test mail server.
type TestMessage struct {
	Headers map[string][]string
	Body    string
}

// FindEmail searches for an email in the test API service. It sends a GET
// request to the search endpoint with the recipient's email address as a query
// parameter. If the email is found, it returns the message and clears the
// inbox. If the email is not found, it returns an EOF error. This method is
// used for testing the email service.
func (se *Email) FindEmail(ctx context.Context, to string) (*TestMessage, error) {
	searchEndpoint := fmt.Sprintf(searchInboxTestEndpoint, se.config.SMTPServer, se.config.TestAPIPort, url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	//revive:disable:nested-structs
	type mailResponse struct {
		Items []struct {
			Content struct {
				Headers map[string][]string `json:"Headers"`
				Body    string              `json:"Body"`
			} `json:"Content"`
		} `json:"items"`
	}
	mailResults := mailResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&mailResults); err != nil {
		return nil, fmt.Errorf("could not decode response: %v", err)
	}
	if len(mailResults.Items) == 0 {
		return nil, io.EOF
	}
	msg := &TestMessage{
		Headers: mailResults.Items[0].Content.Headers,
		Body:    mailResults.Items[0].Content.Body,
	}
	return msg, se.clear(ctx)
}

func (se *Email) clear(ctx context.Context) error {
	clearEndpoint := fmt.Sprintf(clearInboxTestEndpoint, se.config.SMTPServer, se.config.TestAPIPort)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, clearEndpoint, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
