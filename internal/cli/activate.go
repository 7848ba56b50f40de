package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"totem-quiz-bot/internal/config"
	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/infra/postgres"
	"totem-quiz-bot/internal/logger"
)

// NewActivateCmd switches the active quiz. Running bots pick it up once their cache entry expires.
func NewActivateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <quizID>",
		Short: "Make a quiz the single active quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quizID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || quizID <= 0 {
				return fmt.Errorf("invalid quiz id %q", args[0])
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("activate needs postgres; with a YAML catalog set `active: true` on the quiz instead")
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewReferenceStore(pool).ActivateQuiz(cmd.Context(), quizID); err != nil {
				if errors.Is(err, domain.ErrQuizNotFound) {
					return fmt.Errorf("quiz %d does not exist", quizID)
				}
				return err
			}
			log.Info("quiz activated", "quiz_id", quizID)
			return nil
		},
	}
}
