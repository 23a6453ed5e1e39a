package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okian/prospect/internal/domain/model"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func athlete(id, owner string, stars float64, createdOffset time.Duration) model.Athlete {
	return model.Athlete{
		ID:           id,
		UserID:       owner,
		FirstName:    "First " + id,
		LastName:     "Last",
		PrimarySport: "Soccer",
		IsPublic:     true,
		SubScores:    model.SubScores{Performance: 80, Physical: 90, Academic: 70, Social: 85, Evaluation: 75},
		StarRating:   stars,
		CreatedAt:    epoch.Add(createdOffset),
		UpdatedAt:    epoch.Add(createdOffset),
	}
}

func listIDs(as []model.Athlete) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

// runStoreSuite checks the Store contract against any implementation.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and find", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := athlete("a1", "u1", 4.5, 0)
		a.SubScores.Performance = 150
		require.NoError(t, s.Create(ctx, a))

		got, err := s.FindByID(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, a, got)

		byOwner, err := s.FindByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "a1", byOwner.ID)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("details round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := athlete("a1", "u1", 3.0, 0)
		a.Details = model.Details{
			DateOfBirth:       "2007-04-12",
			Bio:               "Left-footed playmaker.",
			ProfilePictureURL: "https://cdn.example.com/a1.png",
			Hometown:          "Austin, TX",
			HighSchool:        "Westlake High",
			College:           "UT Austin",
			GraduationYear:    2026,
			Positions:         []string{"Midfielder", "Winger"},
			HeightFeet:        "5'11\"",
			Weight:            165,
			PhoneNumber:       "+1 512 555 0100",
			SocialMediaLinks:  []string{"https://x.com/a1"},
		}
		require.NoError(t, s.Create(ctx, a))

		got, err := s.FindByID(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, a.Details, got.Details)

		// Mutating a returned list must not reach the stored record.
		got.Positions[0] = "Goalkeeper"
		again, err := s.FindByID(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, "Midfielder", again.Positions[0])

		got.Positions = nil
		got.Bio = ""
		require.NoError(t, s.Save(ctx, got))
		again, err = s.FindByID(ctx, "a1")
		require.NoError(t, err)
		require.Nil(t, again.Positions)
		require.Empty(t, again.Bio)
		require.Equal(t, 2026, again.GraduationYear)
	})

	t.Run("not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.FindByID(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.FindByOwner(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, s.Save(ctx, athlete("missing", "u", 1, 0)), ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	})

	t.Run("duplicates", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Create(ctx, athlete("a1", "u1", 3, 0)))
		require.ErrorIs(t, s.Create(ctx, athlete("a1", "u2", 3, 0)), ErrDuplicate)
		require.ErrorIs(t, s.Create(ctx, athlete("a2", "u1", 3, 0)), ErrDuplicate)
	})

	t.Run("save overwrites and reindexes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Create(ctx, athlete("a1", "u1", 2.0, 0)))
		require.NoError(t, s.Create(ctx, athlete("a2", "u2", 3.0, 0)))

		a1, err := s.FindByID(ctx, "a1")
		require.NoError(t, err)
		a1.StarRating = 5.0
		a1.UpdatedAt = epoch.Add(time.Hour)
		require.NoError(t, s.Save(ctx, a1))

		got, err := s.FindByID(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, 5.0, got.StarRating)
		require.Equal(t, epoch.Add(time.Hour), got.UpdatedAt)

		page, total, err := s.List(ctx, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, []string{"a1", "a2"}, listIDs(page))
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Create(ctx, athlete("a1", "u1", 2.0, 0)))
		require.NoError(t, s.Delete(ctx, "a1"))
		_, err := s.FindByOwner(ctx, "u1")
		require.ErrorIs(t, err, ErrNotFound)

		// The owner may create again once the profile is gone.
		require.NoError(t, s.Create(ctx, athlete("a2", "u1", 2.0, 0)))
	})

	t.Run("list order and filters", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rows := []model.Athlete{
			athlete("c", "u1", 4.5, 1*time.Minute),
			athlete("b", "u2", 4.5, 1*time.Minute),
			athlete("a", "u3", 4.5, 2*time.Minute),
			athlete("d", "u4", 3.0, 3*time.Minute),
			athlete("e", "u5", 1.0, 4*time.Minute),
		}
		hidden := athlete("f", "u6", 5.0, 0)
		hidden.IsPublic = false
		tennis := athlete("g", "u7", 3.5, 0)
		tennis.PrimarySport = "Tennis"
		tennis.FirstName = "Serena"
		tennis.LastName = "O'Hara"
		tennis.Hometown = "Miami"
		tennis.GraduationYear = 2027
		rows[3].College = "Miami Dade College"
		rows[3].GraduationYear = 2026
		rows[4].HighSchool = "50%_Prep"
		rows = append(rows, hidden, tennis)
		for _, a := range rows {
			require.NoError(t, s.Create(ctx, a))
		}

		page, total, err := s.List(ctx, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 7, total)
		// stars DESC, then newest first, then id ASC.
		require.Equal(t, []string{"f", "a", "b", "c", "g", "d", "e"}, listIDs(page))

		page, total, err = s.List(ctx, model.ListFilter{PublicOnly: true, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 6, total)
		require.NotContains(t, listIDs(page), "f")

		page, total, err = s.List(ctx, model.ListFilter{MinStars: 3.0, MaxStars: 4.0, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, []string{"g", "d"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{Sport: "tennis", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"g"}, listIDs(page))

		page, total, err = s.List(ctx, model.ListFilter{Sport: "OCC", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 6, total)
		require.NotContains(t, listIDs(page), "g")

		page, _, err = s.List(ctx, model.ListFilter{Query: "o'h", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"g"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{Query: "first d", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"d"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{Location: "miami", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"g", "d"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{Location: "0%_p", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"e"}, listIDs(page))

		// Wildcards in the filter are literal.
		page, total, err = s.List(ctx, model.ListFilter{Location: "%", Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, []string{"e"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{GraduationYear: 2026, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"d"}, listIDs(page))

		page, _, err = s.List(ctx, model.ListFilter{Location: "miami", GraduationYear: 2027, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{"g"}, listIDs(page))

		page, total, err = s.List(ctx, model.ListFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Equal(t, 7, total)
		require.Equal(t, []string{"b", "c"}, listIDs(page))

		page, total, err = s.List(ctx, model.ListFilter{Limit: 5, Offset: 50})
		require.NoError(t, err)
		require.Equal(t, 7, total)
		require.Empty(t, page)

		_, _, err = s.List(ctx, model.ListFilter{})
		require.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("ids cursor", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for i := range 7 {
			id := fmt.Sprintf("id-%02d", i)
			require.NoError(t, s.Create(ctx, athlete(id, "owner-"+id, 1.0, 0)))
		}

		var seen []string
		after := ""
		for {
			ids, err := s.IDs(ctx, after, 3)
			require.NoError(t, err)
			if len(ids) == 0 {
				break
			}
			require.LessOrEqual(t, len(ids), 3)
			seen = append(seen, ids...)
			after = ids[len(ids)-1]
		}
		require.Equal(t, []string{"id-00", "id-01", "id-02", "id-03", "id-04", "id-05", "id-06"}, seen)

		_, err := s.IDs(ctx, "", 0)
		require.True(t, errors.Is(err, ErrInvalidLimit))
	})
}
