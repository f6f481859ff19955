package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"theknife/internal/app"
	"theknife/internal/config"
	"theknife/internal/modules/owner"
	"theknife/internal/modules/review"
	"theknife/internal/pkg/jwt"
	"theknife/internal/pkg/logger"
)

const (
	demoOwner    = "chef.demo"
	demoCustomer = "mario.rossi"
)

var demoRestaurants = []owner.RegisterRestaurantRequest{
	{
		Name:                   "Trattoria del Ponte",
		Address:                "Via del Ponte 12",
		Location:               "Varese, Italy",
		Price:                  "€€",
		Cuisine:                "Italian, Regional Cuisine",
		Longitude:              8.8251,
		Latitude:               45.8206,
		PhoneNumber:            "+39 0332 123456",
		WebsiteURL:             "https://trattoriadelponte.example",
		Award:                  "Bib Gourmand",
		FacilitiesAndServices:  "Terrace,Wheelchair access",
		Description:            "Family-run trattoria by the river serving handmade pasta and lake fish since 1962.",
		DeliveryAvailable:      false,
		OnlineBookingAvailable: true,
	},
	{
		Name:                   "Osteria Verde",
		Address:                "Piazza Monte Grappa 3",
		Location:               "Varese, Italy",
		Price:                  "€€€",
		Cuisine:                "Creative, Vegetarian",
		Longitude:              8.8243,
		Latitude:               45.8178,
		PhoneNumber:            "+39 0332 654321",
		Award:                  "1 Star",
		GreenStar:              true,
		Description:            "Seasonal tasting menus built around the kitchen garden and local producers.",
		DeliveryAvailable:      true,
		OnlineBookingAvailable: true,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	stores, err := app.OpenStores(cfg, zl)
	if err != nil {
		zl.Fatal("open stores", zap.Error(err))
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, stores, zl)
	if err != nil {
		zl.Fatal("load state", zap.Error(err))
	}
	defer a.Close()

	for _, req := range demoRestaurants {
		_, err := a.Owners.RegisterRestaurant(ctx, demoOwner, req)
		switch {
		case errors.Is(err, owner.ErrConflict):
			zl.Info("restaurant already present", zap.String("restaurant", req.Name))
		case err != nil:
			zl.Fatal("register restaurant", zap.String("restaurant", req.Name), zap.Error(err))
		}
	}

	first := demoRestaurants[0].Name
	if err := a.Favorites.Add(ctx, demoCustomer, first); err != nil {
		zl.Fatal("add favorite", zap.Error(err))
	}

	if len(a.Reviews.ReviewsBy(demoCustomer)) == 0 {
		rv, err := a.Reviews.Submit(ctx, demoCustomer, review.CreateReviewRequest{
			RestaurantName: first,
			Rating:         5,
			Title:          "Great",
			Body:           "Risotto al pesce persico, perfectly cooked. Friendly staff.",
		})
		if err != nil {
			zl.Fatal("submit review", zap.Error(err))
		}
		if _, err := a.Reviews.Respond(ctx, demoOwner, rv.ID, "Grazie mille, see you again soon!", false); err != nil {
			zl.Fatal("reply", zap.Error(err))
		}
	}

	for user, role := range map[string]string{demoOwner: jwt.RoleOwner, demoCustomer: jwt.RoleCustomer} {
		token, err := a.JWT.GenerateToken(user, role)
		if err != nil {
			zl.Fatal("token", zap.Error(err))
		}
		zl.Info("demo token", zap.String("user", user), zap.String("role", role), zap.String("token", token))
	}

	zl.Info("seed completed",
		zap.Int("restaurants", a.Catalog.Len()),
		zap.Int("reviews", len(a.Reviews.All())),
	)
}
