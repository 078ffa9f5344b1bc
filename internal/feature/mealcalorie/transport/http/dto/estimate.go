// Package dto defines data transfer objects for the mealcalorie HTTP API.
package dto

// EstimateRequest is the JSON body of POST /predict and POST /v1/meal/estimate.
// Image is bare base64 or a data URI ("data:image/jpeg;base64,...").
type EstimateRequest struct {
	Image string `json:"image"`
}

// FoodItemResponse is one matched food in the estimate response.
type FoodItemResponse struct {
	FoodName string  `json:"foodName"`
	Calories int     `json:"calories"`
	Cuisine  string  `json:"cuisine"`
	Category string  `json:"category"`
	Portion  string  `json:"portion"`
	Conf     float64 `json:"conf"`
}

// EstimateResponse is the success payload. Items is always a JSON array, never null.
type EstimateResponse struct {
	Items         []FoodItemResponse `json:"items"`
	TotalCalories int                `json:"totalCalories"`
	Note          string             `json:"note"`
}

// ErrorResponse is the payload for decode and inference failures.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
