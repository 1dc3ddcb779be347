package migration

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/website"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/spf13/cobra"
)

func init() {
	seedCommand := &cobra.Command{
		Use:   "seed",
		Short: "Migrate to the latest version and fill the database with sample data for local dev",
		Run: func(cmd *cobra.Command, args []string) {
			SampleSeed()
		},
	}

	website.WebsiteCommand.AddCommand(seedCommand)
}

// Creates only what's necessary to get the service running: an up-to-date
// schema. Sample data makes local dev a lot better.
func BareMinimumSeed() {
	Migrate(LatestVersion())
}

// Seeds the database with sample data for local dev. User ids here match the
// tokens minted by the identity provider's dev mode.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConn()
	defer conn.Close(ctx)

	store := linkdata.NewPGStore(conn)

	fmt.Println("Creating sample users...")
	seedUser(ctx, store, "user_alice", seededLink{"GitHub", "https://github.com/alice", "gh", "code"},
		seededLink{"Blog", "https://alice.example.com", "blog", ""},
		seededLink{"Mastodon", "https://mastodon.social/@alice", "masto", "social"},
	)
	seedUser(ctx, store, "user_bob", seededLink{"YouTube", "https://youtube.com/@bob", "yt", "video"},
		seededLink{"Twitch", "https://twitch.tv/bob", "twitch", "video"},
	)
	seedUser(ctx, store, "user_charlie")

	fmt.Println("Done.")
}

type seededLink struct {
	title, url, slug, category string
}

func seedUser(ctx context.Context, store linkdata.Store, userID string, links ...seededLink) {
	_, err := linkdata.UpdateBio(ctx, store, userID, lorem.Paragraph(1, 2))
	if err != nil {
		panic(err)
	}

	for _, l := range links {
		link, err := linkdata.CreateLink(ctx, store, userID, linkdata.LinkInput{
			Title:      l.title,
			URL:        l.url,
			Slug:       l.slug,
			Category:   l.category,
			Visibility: models.LinkVisibilityPublic,
		})
		if err != nil {
			panic(err)
		}

		// Hide the occasional link so the owner/public split shows up in dev.
		if randomBool() {
			_, err = linkdata.ToggleVisibility(ctx, store, link.ID, userID)
			if err != nil {
				panic(err)
			}
		}
	}
}

func randomBool() bool {
	return rand.Intn(2) == 1
}
