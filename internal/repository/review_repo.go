package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
)

// TimestampLayout is fixed-width so timestamps sort as text.
const TimestampLayout = "2006-01-02T15:04:05.000000000"

var reviewHeader = []string{
	"id", "author", "restaurantName", "rating", "title", "body", "timestamp",
	"replyId", "replyAuthor", "replyText", "replyTimestamp",
}

const minReviewFields = 7

// accepted on read; the second also covers fractional seconds
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

func ParseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ReviewFileRepository keeps the ledger in one CSV with reply columns inlined.
type ReviewFileRepository struct {
	path string
	log  *zap.Logger
}

func NewReviewFileRepository(path string, log *zap.Logger) *ReviewFileRepository {
	return &ReviewFileRepository{path: path, log: log}
}

func (r *ReviewFileRepository) Load(ctx context.Context) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := readTable(r.path, r.log)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Review, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rv, err := r.parseReview(row)
		if err != nil {
			skipped++
			r.log.Warn("skipping malformed review row",
				zap.String("file", r.path), zap.Int("line", row.line), zap.Error(err))
			continue
		}
		out = append(out, rv)
	}
	if skipped > 0 {
		metrics.RowsSkipped.WithLabelValues("reviews").Add(float64(skipped))
	}
	return out, nil
}

func (r *ReviewFileRepository) parseReview(row csvRow) (domain.Review, error) {
	rec := row.fields
	if len(rec) < minReviewFields {
		return domain.Review{}, fmt.Errorf("%d fields, want at least %d", len(rec), minReviewFields)
	}
	created, err := ParseTimestamp(field(rec, 6))
	if err != nil {
		return domain.Review{}, err
	}
	rv := domain.Review{
		ID:             field(rec, 0),
		Author:         field(rec, 1),
		RestaurantName: field(rec, 2),
		Title:          rec[4],
		Body:           rec[5],
		CreatedAt:      created,
	}
	if rv.ID == "" {
		return domain.Review{}, fmt.Errorf("empty review id")
	}
	rating, err := strconv.Atoi(field(rec, 3))
	if err != nil || !rv.SetRating(rating) {
		r.log.Warn("review rating out of range, left unset",
			zap.String("file", r.path), zap.Int("line", row.line), zap.String("id", rv.ID), zap.String("rating", field(rec, 3)))
	}

	if replyID := field(rec, 7); len(rec) >= 10 && replyID != "" {
		reply := &domain.Reply{
			ID:       replyID,
			Author:   field(rec, 8),
			ReviewID: rv.ID,
			Text:     rec[9],
		}
		if ts := field(rec, 10); ts != "" {
			if t, err := ParseTimestamp(ts); err == nil {
				reply.CreatedAt = t
			} else {
				r.log.Warn("bad reply timestamp", zap.String("file", r.path), zap.Int("line", row.line), zap.Error(err))
			}
		}
		rv.Reply = reply
	}
	return rv, nil
}

// Save rewrites the whole ledger. Reply columns are empty for unanswered reviews.
func (r *ReviewFileRepository) Save(ctx context.Context, reviews []domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, 0, len(reviews))
	for _, rv := range reviews {
		rows = append(rows, formatReview(rv))
	}
	return writeTableAtomic(r.path, reviewHeader, rows)
}

func formatReview(rv domain.Review) []string {
	row := []string{
		rv.ID,
		rv.Author,
		rv.RestaurantName,
		strconv.Itoa(rv.Rating),
		rv.Title,
		rv.Body,
		FormatTimestamp(rv.CreatedAt),
		"", "", "", "",
	}
	if rv.Reply != nil {
		row[7] = rv.Reply.ID
		row[8] = rv.Reply.Author
		row[9] = rv.Reply.Text
		if !rv.Reply.CreatedAt.IsZero() {
			row[10] = FormatTimestamp(rv.Reply.CreatedAt)
		}
	}
	return row
}

// ReviewRepository is the SQL-backed ledger store.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type reviewModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Author         string     `gorm:"column:author;index"`
	RestaurantName string     `gorm:"column:restaurant_name;index"`
	Rating         int        `gorm:"column:rating"`
	Title          string     `gorm:"column:title"`
	Body           string     `gorm:"column:body;type:text"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	ReplyID        *string    `gorm:"column:reply_id"`
	ReplyAuthor    *string    `gorm:"column:reply_author"`
	ReplyText      *string    `gorm:"column:reply_text;type:text"`
	ReplyCreatedAt *time.Time `gorm:"column:reply_created_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func toDomainReview(m reviewModel) domain.Review {
	rv := domain.Review{
		ID:             m.ID,
		Author:         m.Author,
		RestaurantName: m.RestaurantName,
		Rating:         m.Rating,
		Title:          m.Title,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt.UTC(),
	}
	if m.ReplyID != nil && *m.ReplyID != "" {
		reply := &domain.Reply{ID: *m.ReplyID, ReviewID: m.ID}
		if m.ReplyAuthor != nil {
			reply.Author = *m.ReplyAuthor
		}
		if m.ReplyText != nil {
			reply.Text = *m.ReplyText
		}
		if m.ReplyCreatedAt != nil {
			reply.CreatedAt = m.ReplyCreatedAt.UTC()
		}
		rv.Reply = reply
	}
	return rv
}

func toReviewModel(rv domain.Review) reviewModel {
	m := reviewModel{
		ID:             rv.ID,
		Author:         rv.Author,
		RestaurantName: rv.RestaurantName,
		Rating:         rv.Rating,
		Title:          rv.Title,
		Body:           rv.Body,
		CreatedAt:      rv.CreatedAt,
	}
	if rv.Reply != nil {
		id, author, text, at := rv.Reply.ID, rv.Reply.Author, rv.Reply.Text, rv.Reply.CreatedAt
		m.ReplyID = &id
		m.ReplyAuthor = &author
		m.ReplyText = &text
		m.ReplyCreatedAt = &at
	}
	return m
}

func (r *ReviewRepository) Load(ctx context.Context) ([]domain.Review, error) {
	var rows []reviewModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReview(m))
	}
	return out, nil
}

// Save replaces the table contents in one transaction.
func (r *ReviewRepository) Save(ctx context.Context, reviews []domain.Review) error {
	rows := make([]reviewModel, 0, len(reviews))
	for _, rv := range reviews {
		rows = append(rows, toReviewModel(rv))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&reviewModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
