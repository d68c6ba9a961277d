// Package usda talks to the USDA FoodData Central search API.
package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
)

const DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

var ErrFoodNotFound = errors.New("food not found")

const foodCacheExpireSeconds = int(24 * time.Hour / time.Second)

// Food is a food search result with its macros per 100g.
type Food struct {
	FoodID       int      `json:"food_id"`
	Description  string   `json:"description"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	TotalFat     float64  `json:"total_fat"`
	SaturatedFat float64  `json:"saturated_fat"`
	Cholesterol  *float64 `json:"cholesterol"`
	Sodium       *float64 `json:"sodium"`
	Sugar        *float64 `json:"sugar"`
}

type searchResponse struct {
	Foods []struct {
		FdcID         int    `json:"fdcId"`
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *freecache.Cache
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, cache *freecache.Cache) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cache:      cache,
	}
}

// SearchFood returns the top FoodData Central match for the query.
// Responses are cached, the food database does not exactly change by the minute.
func (c *Client) SearchFood(ctx context.Context, query string) (_ *Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usda.searchFood")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := []byte("food-search::" + strings.ToLower(query))
	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		log.Tracef("found food search %q in cache", query)
		var food Food
		if err = json.Unmarshal(cachedBytes, &food); err == nil {
			return &food, nil
		}
		log.Errorf("failed to unmarshal cached food search %q: %s", query, err)
	}

	searchURL := fmt.Sprintf(
		"%s/foods/search?api_key=%s&query=%s&pageSize=1",
		c.baseURL, c.apiKey, url.QueryEscape(query),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create food search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get food search response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food search response status: %s", resp.Status)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read food search response: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal food search response: %w", err)
	}

	if len(searchResp.Foods) == 0 {
		return nil, ErrFoodNotFound
	}

	top := searchResp.Foods[0]
	food := &Food{
		FoodID:      top.FdcID,
		Description: top.Description,
	}
	for _, n := range top.FoodNutrients {
		value := n.Value
		switch n.NutrientName {
		case "Energy":
			food.Calories = value
		case "Protein":
			food.Protein = value
		case "Carbohydrate, by difference":
			food.Carbs = value
		case "Total lipid (fat)":
			food.TotalFat = value
		case "Fatty acids, total saturated":
			food.SaturatedFat = value
		case "Cholesterol":
			food.Cholesterol = &value
		case "Sodium, Na":
			food.Sodium = &value
		case "Sugars, total including NLEA":
			food.Sugar = &value
		}
	}

	foodBytes, err := json.Marshal(food)
	if err != nil {
		log.Errorf("failed to marshal food search %q for cache: %s", query, err)
		return food, nil
	}
	if err := c.cache.Set(cacheKey, foodBytes, foodCacheExpireSeconds); err != nil {
		log.Errorf("failed to cache food search %q: %s", query, err)
	}

	return food, nil
}
