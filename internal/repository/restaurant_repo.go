package repository

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
)

const (
	legacyRestaurantFields  = 14
	currentRestaurantFields = 16
)

var restaurantHeader = []string{
	"Name", "Address", "Location", "Price", "Cuisine", "Longitude", "Latitude",
	"PhoneNumber", "Url", "WebsiteUrl", "Award", "GreenStar",
	"FacilitiesAndServices", "Description", "DeliveryAvailable", "OnlineBookingAvailable",
}

// RestaurantFileRepository reads the guide snapshot and appends new listings to it.
type RestaurantFileRepository struct {
	path string
	log  *zap.Logger
}

func NewRestaurantFileRepository(path string, log *zap.Logger) *RestaurantFileRepository {
	return &RestaurantFileRepository{path: path, log: log}
}

// Load parses every row. Rows with fewer than 14 fields or no name are skipped.
func (r *RestaurantFileRepository) Load(ctx context.Context) ([]domain.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := readTable(r.path, r.log)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Restaurant, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rest, ok := parseRestaurant(row.fields)
		if !ok {
			skipped++
			r.log.Warn("skipping malformed restaurant row",
				zap.String("file", r.path), zap.Int("line", row.line), zap.Int("fields", len(row.fields)))
			continue
		}
		out = append(out, rest)
	}
	if skipped > 0 {
		metrics.RowsSkipped.WithLabelValues("restaurants").Add(float64(skipped))
	}
	r.log.Info("restaurants loaded", zap.String("file", r.path), zap.Int("count", len(out)), zap.Int("skipped", skipped))
	return out, nil
}

// Append adds one row in the 16-column layout. Existing rows are untouched.
func (r *RestaurantFileRepository) Append(ctx context.Context, rest domain.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return appendRow(r.path, restaurantHeader, formatRestaurant(rest))
}

func parseRestaurant(rec []string) (domain.Restaurant, bool) {
	if len(rec) < legacyRestaurantFields {
		return domain.Restaurant{}, false
	}
	rest := domain.Restaurant{
		Name:                  field(rec, 0),
		Address:               field(rec, 1),
		Location:              field(rec, 2),
		Price:                 field(rec, 3),
		Cuisine:               field(rec, 4),
		Longitude:             parseCoordinate(field(rec, 5)),
		Latitude:              parseCoordinate(field(rec, 6)),
		PhoneNumber:           field(rec, 7),
		URL:                   field(rec, 8),
		WebsiteURL:            field(rec, 9),
		Award:                 field(rec, 10),
		GreenStar:             field(rec, 11),
		FacilitiesAndServices: field(rec, 12),
		Description:           field(rec, 13),
	}
	if rest.Name == "" {
		return domain.Restaurant{}, false
	}
	if len(rec) >= currentRestaurantFields {
		rest.DeliveryAvailable = domain.ParseYesNo(field(rec, 14))
		rest.OnlineBookingAvailable = domain.ParseYesNo(field(rec, 15))
	} else {
		rest.DeliveryAvailable, rest.OnlineBookingAvailable = domain.ServicesFromFacilities(rest.FacilitiesAndServices)
	}
	return rest, true
}

// parseCoordinate maps blank, "N/A", non-numeric and non-finite values to 0 (unknown).
func parseCoordinate(v string) float64 {
	if v == "" || strings.EqualFold(v, "N/A") {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatRestaurant(r domain.Restaurant) []string {
	return []string{
		r.Name,
		r.Address,
		r.Location,
		r.Price,
		r.Cuisine,
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		r.PhoneNumber,
		r.URL,
		r.WebsiteURL,
		r.Award,
		r.GreenStar,
		r.FacilitiesAndServices,
		r.Description,
		domain.FormatYesNo(r.DeliveryAvailable),
		domain.FormatYesNo(r.OnlineBookingAvailable),
	}
}

// RestaurantRepository is the SQL-backed catalog store.
type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

type restaurantModel struct {
	ID                     int64   `gorm:"column:id;primaryKey"`
	Name                   string  `gorm:"column:name;index"`
	Address                string  `gorm:"column:address"`
	Location               string  `gorm:"column:location"`
	Price                  string  `gorm:"column:price"`
	Cuisine                string  `gorm:"column:cuisine"`
	Longitude              float64 `gorm:"column:longitude"`
	Latitude               float64 `gorm:"column:latitude"`
	PhoneNumber            string  `gorm:"column:phone_number"`
	URL                    string  `gorm:"column:url"`
	WebsiteURL             string  `gorm:"column:website_url"`
	Award                  string  `gorm:"column:award"`
	GreenStar              string  `gorm:"column:green_star"`
	FacilitiesAndServices  string  `gorm:"column:facilities_and_services;type:text"`
	Description            string  `gorm:"column:description;type:text"`
	DeliveryAvailable      bool    `gorm:"column:delivery_available"`
	OnlineBookingAvailable bool    `gorm:"column:online_booking_available"`
}

func (restaurantModel) TableName() string { return "restaurants" }

func toDomainRestaurant(m restaurantModel) domain.Restaurant {
	return domain.Restaurant{
		Name:                   m.Name,
		Address:                m.Address,
		Location:               m.Location,
		Price:                  m.Price,
		Cuisine:                m.Cuisine,
		Longitude:              m.Longitude,
		Latitude:               m.Latitude,
		PhoneNumber:            m.PhoneNumber,
		URL:                    m.URL,
		WebsiteURL:             m.WebsiteURL,
		Award:                  m.Award,
		GreenStar:              m.GreenStar,
		FacilitiesAndServices:  m.FacilitiesAndServices,
		Description:            m.Description,
		DeliveryAvailable:      m.DeliveryAvailable,
		OnlineBookingAvailable: m.OnlineBookingAvailable,
	}
}

func toRestaurantModel(r domain.Restaurant) restaurantModel {
	return restaurantModel{
		Name:                   r.Name,
		Address:                r.Address,
		Location:               r.Location,
		Price:                  r.Price,
		Cuisine:                r.Cuisine,
		Longitude:              r.Longitude,
		Latitude:               r.Latitude,
		PhoneNumber:            r.PhoneNumber,
		URL:                    r.URL,
		WebsiteURL:             r.WebsiteURL,
		Award:                  r.Award,
		GreenStar:              r.GreenStar,
		FacilitiesAndServices:  r.FacilitiesAndServices,
		Description:            r.Description,
		DeliveryAvailable:      r.DeliveryAvailable,
		OnlineBookingAvailable: r.OnlineBookingAvailable,
	}
}

// Load returns restaurants in insertion order.
func (r *RestaurantRepository) Load(ctx context.Context) ([]domain.Restaurant, error) {
	var rows []restaurantModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Restaurant, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainRestaurant(m))
	}
	return out, nil
}

func (r *RestaurantRepository) Append(ctx context.Context, rest domain.Restaurant) error {
	m := toRestaurantModel(rest)
	return r.db.WithContext(ctx).Create(&m).Error
}
