package domain

// Association pairs an identity (owner or user) with a restaurant name.
type Association struct {
	Key            string `json:"key"`
	RestaurantName string `json:"restaurant_name"`
}
