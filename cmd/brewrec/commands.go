package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/ingest"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/pkg/metrics"
	"github.com/rushteam/brewrec/profile"
)

func newFeedCmd(flags *rootFlags) *cobra.Command {
	var userID int64
	var size int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Recommend posts for a user (0 = anonymous)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			results, err := app.Feed.Recommend(cmd.Context(), userID, size)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().IntVar(&size, "size", 0, "number of results")
	return cmd
}

func newTrendingCmd(flags *rootFlags) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show trending posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			results, err := app.Feed.Trending(cmd.Context(), size)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "number of results")
	return cmd
}

func newSimilarCmd(flags *rootFlags) *cobra.Command {
	var postID int64
	var size int
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Show posts sharing tags with a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			results, err := app.Feed.Similar(cmd.Context(), postID, size)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().Int64Var(&postID, "post", 0, "source post id")
	cmd.Flags().IntVar(&size, "size", 0, "number of results")
	_ = cmd.MarkFlagRequired("post")
	return cmd
}

func newBarsCmd(flags *rootFlags) *cobra.Command {
	var (
		lat, lon, radius float64
		limit            int
		profileName      string
	)
	cmd := &cobra.Command{
		Use:   "bars",
		Short: "Recommend bars near a location (by rating when no location is given)",
		Long: `Recommend bars ranked by a blend of distance and quality.

Without --lat/--lon bars are ranked by rating. With --radius only bars inside the
radius are returned, ranked with --profile (comprehensive, distance_first,
rating_first, distance_only, rating_only).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasLat, hasLon := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if hasLat != hasLon {
				return errors.New("--lat and --lon must be given together")
			}
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			var results []core.BarResult
			switch {
			case !hasLat:
				results, err = app.Venues.RecommendWithoutLocation(ctx, limit)
			case radius > 0:
				results, err = app.Venues.Nearby(ctx, core.Location{Latitude: lat, Longitude: lon}, radius, profileName)
			default:
				results, err = app.Venues.Recommend(ctx, &core.Location{Latitude: lat, Longitude: lon}, limit)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "only bars within this many km")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of results")
	cmd.Flags().StringVar(&profileName, "profile", "", "weight profile used with --radius")
	return cmd
}

func newRecordCmd(flags *rootFlags) *cobra.Command {
	var (
		userID, targetID     int64
		targetType, behavior string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a user behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			tt, err := core.ParseTargetType(targetType)
			if err != nil {
				return err
			}
			bt, err := core.ParseBehaviorType(behavior)
			if err != nil {
				return err
			}
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Behaviors.RecordEvent(cmd.Context(), userID, tt, targetID, bt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s/%d for user %d\n", bt, tt, targetID, userID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&targetType, "type", "post", "target type: post, beverage, wiki, bar")
	cmd.Flags().Int64Var(&targetID, "target", 0, "target id")
	cmd.Flags().StringVar(&behavior, "behavior", "view", "behavior: view, like, favorite, comment, share")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newPublishTrendingCmd(flags *rootFlags) *cobra.Command {
	var (
		every       time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "publish-trending",
		Short: "Compute the trending list and publish it to the key-value store",
		Long: `Compute the trending list and publish it to the key-value store.

With --every the command keeps running and republishes on that interval until
interrupted; --metrics-addr additionally serves Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if every <= 0 {
				n, err := app.Trending.Publish(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published %d posts to %s\n", n, app.Trending.Key)
				return nil
			}

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logging.Component("metrics").Error().Err(err).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
			}
			return app.Trending.Run(ctx, every)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "republish interval (0 = publish once)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address while running")
	return cmd
}

func newPreferenceCmd(flags *rootFlags) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "preference",
		Short: "Show a user's beverage preference profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			pref, err := app.Preferences.Extract(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if pref == nil {
				pref = &profile.Preference{UserID: userID}
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				*profile.Preference
				Query string `json:"query"`
			}{pref, pref.QueryText()})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPopularityCmd(flags *rootFlags) *cobra.Command {
	var ids []int64
	cmd := &cobra.Command{
		Use:   "popularity",
		Short: "Score beverage popularity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			scores, err := app.Popularity.Popularities(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scores)
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "beverage", nil, "beverage ids")
	_ = cmd.MarkFlagRequired("beverage")
	return cmd
}

func newIngestCmd(flags *rootFlags) *cobra.Command {
	var brokers []string
	var topic string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Consume behavior events from Kafka into the behavior log",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			kc := app.Config.Ingest
			if len(brokers) > 0 {
				kc.Brokers = brokers
			}
			if topic != "" {
				kc.Topic = topic
			}
			consumer, err := ingest.NewKafkaConsumer(kc, app.Behaviors)
			if err != nil {
				return err
			}
			defer consumer.Close()

			err = consumer.Run(cmd.Context())
			handled, failed := consumer.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d events (%d skipped)\n", handled, failed)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka brokers (overrides ingest.brokers)")
	cmd.Flags().StringVar(&topic, "topic", "", "Kafka topic (overrides ingest.topic)")
	return cmd
}
