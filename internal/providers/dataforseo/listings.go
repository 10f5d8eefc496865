package dataforseo

import (
	"context"
)

const mapsSearchPath = "/v3/serp/google/maps/live/advanced"

// Listing is one business from a maps search.
type Listing struct {
	Title    string
	Category string
	Address  string
	Phone    string
	Website  string
	Rating   *float64
	Reviews  *int64
}

type mapsResult struct {
	Items []struct {
		Type     string `json:"type"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Address  string `json:"address"`
		Phone    string `json:"phone"`
		URL      string `json:"url"`
		Domain   string `json:"domain"`
		Rating   *struct {
			Value      *float64 `json:"value"`
			VotesCount *int64   `json:"votes_count"`
		} `json:"rating"`
	} `json:"items"`
}

// BusinessListings searches local business listings matching query near location.
func (c *Client) BusinessListings(ctx context.Context, query, location string, limit int) ([]Listing, error) {
	task := map[string]any{
		"keyword":       query,
		"location_name": Locale{Location: location}.location(),
		"language_name": defaultLanguage,
	}
	if limit > 0 {
		task["depth"] = limit
	}

	var results []mapsResult
	if err := c.post(ctx, mapsSearchPath, task, &results); err != nil {
		return nil, err
	}

	listings := []Listing{}
	for _, r := range results {
		for _, item := range r.Items {
			if item.Type != "" && item.Type != "maps_search" {
				continue
			}
			l := Listing{
				Title:    item.Title,
				Category: item.Category,
				Address:  item.Address,
				Phone:    item.Phone,
				Website:  item.URL,
			}
			if l.Website == "" && item.Domain != "" {
				l.Website = "https://" + item.Domain
			}
			if item.Rating != nil {
				l.Rating = item.Rating.Value
				l.Reviews = item.Rating.VotesCount
			}
			listings = append(listings, l)
			if limit > 0 && len(listings) == limit {
				return listings, nil
			}
		}
	}
	return listings, nil
}
