package eight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SetHeatingLevel pushes a temperature level (-100..100) to the user's
// side of the mattress. Used by the temperature adjuster after profile
// updates.
func (c *Client) SetHeatingLevel(ctx context.Context, accessToken, eightUserID string, level int) error {
	if level < -100 || level > 100 {
		return fmt.Errorf("heating level %d out of range [-100, 100]", level)
	}

	payload := map[string]int{"currentLevel": level}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode heating request: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/temperature", c.baseURL, eightUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create heating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("heating request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("heating request returned status %d", resp.StatusCode)
	}
	return nil
}
