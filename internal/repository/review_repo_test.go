package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"theknife/internal/domain"
)

func sampleReviews() []domain.Review {
	t1 := time.Date(2024, 3, 1, 19, 30, 0, 123456789, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	return []domain.Review{
		{
			ID:             "REV_1_a",
			Author:         "anna",
			RestaurantName: "Le Bernardin",
			Rating:         5,
			Title:          "Great",
			Body:           "Fish, perfectly \"cooked\".\nWould return.",
			CreatedAt:      t1,
		},
		{
			ID:             "REV_2_b",
			Author:         "marco",
			RestaurantName: "Osteria, Nuova",
			Rating:         2,
			Title:          "Meh",
			Body:           "Slow service",
			CreatedAt:      t2,
			Reply: &domain.Reply{
				ID:        "RESP_3_c",
				Author:    "chef",
				ReviewID:  "REV_2_b",
				Text:      "Sorry, we were short-staffed.",
				CreatedAt: t2.Add(time.Hour),
			},
		},
	}
}

func TestReviewFileRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewFileRepository(filepath.Join(t.TempDir(), "reviews.csv"), zap.NewNop())

	want := sampleReviews()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Author, got[i].Author)
		assert.Equal(t, want[i].RestaurantName, got[i].RestaurantName)
		assert.Equal(t, want[i].Rating, got[i].Rating)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Body, got[i].Body)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
	}
	assert.Nil(t, got[0].Reply, "unanswered review reads back without a reply")
	require.NotNil(t, got[1].Reply)
	assert.Equal(t, "RESP_3_c", got[1].Reply.ID)
	assert.Equal(t, "chef", got[1].Reply.Author)
	assert.Equal(t, "REV_2_b", got[1].Reply.ReviewID)
	assert.Equal(t, "Sorry, we were short-staffed.", got[1].Reply.Text)
	assert.True(t, want[1].Reply.CreatedAt.Equal(got[1].Reply.CreatedAt))
}

func TestReviewFileRepository_LoadTolerance(t *testing.T) {
	content := "id,author,restaurantName,rating,title,body,timestamp,replyId,replyAuthor,replyText,replyTimestamp\n" +
		// legacy timestamp without fraction, reply without timestamp column
		"REV_1,anna,Osteria,4,\"Nice\",\"Good, honest food\",2023-11-05T20:15:30,RESP_1,chef,\"Thanks\"\n" +
		// rating out of range: kept, rating left unset
		"REV_2,bob,Osteria,9,t,b,2023-11-06T10:00\n" +
		// unparseable timestamp: skipped
		"REV_3,carl,Osteria,3,t,b,yesterday\n" +
		// too few fields: skipped
		"REV_4,dan,Osteria\n" +
		// empty reply id: no reply
		"REV_5,eve,Osteria,1,t,b,2023-11-07T08:00:00.5,,,,\n"
	repo := NewReviewFileRepository(writeFixture(t, content), zap.NewNop())

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "REV_1", got[0].ID)
	assert.Equal(t, time.Date(2023, 11, 5, 20, 15, 30, 0, time.UTC), got[0].CreatedAt)
	require.NotNil(t, got[0].Reply)
	assert.Equal(t, "Thanks", got[0].Reply.Text)
	assert.True(t, got[0].Reply.CreatedAt.IsZero())

	assert.Equal(t, "REV_2", got[1].ID)
	assert.Equal(t, 0, got[1].Rating)

	assert.Equal(t, "REV_5", got[2].ID)
	assert.Nil(t, got[2].Reply)
	assert.Equal(t, 500*time.Millisecond, time.Duration(got[2].CreatedAt.Nanosecond()))
}

func TestTimestampFormatSortsAsText(t *testing.T) {
	a := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b := a.Add(time.Nanosecond)
	assert.Less(t, FormatTimestamp(a), FormatTimestamp(b))

	parsed, err := ParseTimestamp(FormatTimestamp(b))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(b))
}
