package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/moderation"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/subm"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newModeratorCmd() *cobra.Command {
	moderatorCmd := &cobra.Command{
		Use:   "moderator",
		Short: "Manage moderator relationships",
	}

	assignCmd := &cobra.Command{
		Use:   "assign <moderator> <user>",
		Short: "Make a moderator review the proofs of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModeration(cmd.Context(), func(users *user.UserSrvc, mods *moderation.ModerationSrvc) error {
				sess, err := sessionOf(cmd.Context(), users, args[0])
				if err != nil {
					return err
				}
				rel, err := mods.Assign(cmd.Context(), sess, args[1])
				if err != nil {
					return err
				}
				log.Info().
					Str("moderator", rel.ModeratorUUID.String()).
					Str("user", rel.UserUUID.String()).
					Msg("moderator assigned")
				return nil
			})
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke <username>",
		Short: "End the relationship the given account is part of",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModeration(cmd.Context(), func(users *user.UserSrvc, mods *moderation.ModerationSrvc) error {
				sess, err := sessionOf(cmd.Context(), users, args[0])
				if err != nil {
					return err
				}
				if err := mods.Revoke(cmd.Context(), sess); err != nil {
					return err
				}
				log.Info().Str("username", args[0]).Msg("relationship revoked")
				return nil
			})
		},
	}

	moderatorCmd.AddCommand(assignCmd, revokeCmd)
	return moderatorCmd
}

// withModeration wires the moderation service on postgres. Notifications
// are stored in-app only; the CLI does not publish to the queue.
func withModeration(ctx context.Context, fn func(*user.UserSrvc, *moderation.ModerationSrvc) error) error {
	pool, err := connectPg(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := user.NewUserSrvc(pool, mail.NewConsoleSender(slog.Default()))
	return fn(users, newModerationSrvc(pool, users))
}

func newModerationSrvc(pool *pgxpool.Pool, users *user.UserSrvc) *moderation.ModerationSrvc {
	return moderation.NewModerationSrvc(
		moderation.NewPgRelRepo(pool),
		users,
		subm.NewPgSubmRepo(pool),
		notif.NewNotifSrvc(notif.NewPgRepo(pool), nil),
	)
}

// sessionOf acts as the named account.
func sessionOf(ctx context.Context, users *user.UserSrvc, username string) (auth.Session, error) {
	u, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return auth.Session{}, fmt.Errorf("user %q: %w", username, err)
	}
	return auth.Session{UserUUID: u.UUID, Username: u.Username, Role: u.Role}, nil
}
