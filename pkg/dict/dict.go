// Package dict looks up word definitions through public dictionary
// APIs. Failures are reported as errors; the handler layer turns them
// into an apologetic message rather than surfacing them.
package dict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ysaito/tg-lingo-circle/pkg/lang"
)

const maxDefinitions = 3

// Client queries the English dictionary API and the Jisho API for
// Japanese terms. Base URLs are fields so tests can point at a local
// server.
type Client struct {
	HTTPClient    *http.Client
	EnglishAPIURL string
	JishoAPIURL   string
}

func NewClient() *Client {
	return &Client{
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		EnglishAPIURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
		JishoAPIURL:   "https://jisho.org/api/v1/search/words",
	}
}

// Lookup returns up to three definitions for word in the given script.
func (c *Client) Lookup(ctx context.Context, word string, language lang.Language) ([]string, error) {
	switch language {
	case lang.Japanese:
		return c.lookupJapanese(ctx, word)
	default:
		return c.lookupEnglish(ctx, word)
	}
}

type englishEntry struct {
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (c *Client) lookupEnglish(ctx context.Context, word string) ([]string, error) {
	endpoint := c.EnglishAPIURL + "/" + url.PathEscape(word)
	var entries []englishEntry
	if err := c.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, err
	}

	var definitions []string
	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if def.Definition == "" {
					continue
				}
				definitions = append(definitions, fmt.Sprintf("(%s) %s", meaning.PartOfSpeech, def.Definition))
				if len(definitions) >= maxDefinitions {
					return definitions, nil
				}
			}
		}
	}
	if len(definitions) == 0 {
		return nil, fmt.Errorf("no definitions found for %q", word)
	}
	return definitions, nil
}

type jishoResponse struct {
	Data []struct {
		Japanese []struct {
			Word    string `json:"word"`
			Reading string `json:"reading"`
		} `json:"japanese"`
		Senses []struct {
			EnglishDefinitions []string `json:"english_definitions"`
		} `json:"senses"`
	} `json:"data"`
}

func (c *Client) lookupJapanese(ctx context.Context, word string) ([]string, error) {
	endpoint := c.JishoAPIURL + "?keyword=" + url.QueryEscape(word)
	var resp jishoResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	var definitions []string
	for _, item := range resp.Data {
		reading := ""
		if len(item.Japanese) > 0 && item.Japanese[0].Reading != "" {
			reading = item.Japanese[0].Reading
		}
		for _, sense := range item.Senses {
			if len(sense.EnglishDefinitions) == 0 {
				continue
			}
			def := sense.EnglishDefinitions[0]
			if reading != "" {
				def = fmt.Sprintf("%s (%s)", def, reading)
			}
			definitions = append(definitions, def)
			if len(definitions) >= maxDefinitions {
				return definitions, nil
			}
		}
	}
	if len(definitions) == 0 {
		return nil, fmt.Errorf("no definitions found for %q", word)
	}
	return definitions, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build dictionary request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("dictionary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dictionary returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode dictionary response: %w", err)
	}
	return nil
}
