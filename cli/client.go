package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the ChefAI server
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	SessionID  string
	Token      string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("CHEFAI_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			// Turns can take a while on local models
			Timeout: time.Minute * 3,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}

	return true, nil
}

// sessionResponse is the payload returned by POST /api/v1/session
type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token,omitempty"`
}

// chatRequest is one turn sent to POST /api/v1/chat
type chatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse is the reply from POST /api/v1/chat
type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// StartSession asks the server for a fresh session id (and token, when
// the server has auth configured).
func (c *ApiClient) StartSession() error {
	resp, err := c.httpClient.Post(c.BaseURL+"/api/v1/session", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("session creation failed with status code: %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("failed to decode session response: %w", err)
	}

	c.SessionID = session.SessionID
	c.Token = session.Token
	return nil
}

// Chat sends one user turn and returns the assistant's reply.
func (c *ApiClient) Chat(text string) (string, error) {
	body, err := json.Marshal(chatRequest{Text: text, SessionID: c.SessionID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var reply chatResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if reply.Error != "" {
			return "", fmt.Errorf("server error: %s", reply.Error)
		}
		return "", fmt.Errorf("chat request failed with status code: %d", resp.StatusCode)
	}

	if reply.SessionID != "" {
		c.SessionID = reply.SessionID
	}
	return reply.Response, nil
}

// Status fetches the server's runtime counters.
func (c *ApiClient) Status() (map[string]interface{}, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request failed with status code: %d", resp.StatusCode)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return status, nil
}
