package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/repository"
	"github.com/uni-scheduler/timetable-api/internal/service"
	"github.com/uni-scheduler/timetable-api/pkg/config"
	"github.com/uni-scheduler/timetable-api/pkg/database"
	"github.com/uni-scheduler/timetable-api/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:          "timetablectl",
		Short:        "Operational helper for the timetable API",
		SilenceUsage: true,
	}

	root.AddCommand(seedSlotsCmd(), generateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type toolkit struct {
	cfg        *config.Config
	logr       *zap.Logger
	catalog    *service.CatalogService
	timetables *service.TimetableService
	close      func()
}

func newToolkit() (*toolkit, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	instructorRepo := repository.NewInstructorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	meetingTimeRepo := repository.NewMeetingTimeRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(nil, logr)

	catalog := service.NewCatalogService(
		instructorRepo, roomRepo, departmentRepo, courseRepo, sectionRepo, meetingTimeRepo,
		nil, logr,
	)
	timetables := service.NewTimetableService(
		sectionRepo, courseRepo, instructorRepo, roomRepo, meetingTimeRepo,
		timetableRepo, cacheRepo,
		cfg.Scheduler, cfg.Redis.CacheTTL, logr,
	)

	return &toolkit{
		cfg:        cfg,
		logr:       logr,
		catalog:    catalog,
		timetables: timetables,
		close: func() {
			_ = db.Close()
			_ = logr.Sync()
		},
	}, nil
}

func seedSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-slots",
		Short: "Insert the default weekly slot grid if it is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := newToolkit()
			if err != nil {
				return err
			}
			defer tk.close()

			created, err := tk.catalog.SeedDefaultMeetingTimes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d meeting time slots\n", created)
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	var (
		name        string
		departments []string
		years       []int
		semesters   []int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run a synchronous generation for the given catalog slice",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := newToolkit()
			if err != nil {
				return err
			}
			defer tk.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := tk.timetables.Generate(ctx, "cli", dto.GenerateTimetableRequest{
				Name:          name,
				DepartmentIDs: departments,
				Years:         years,
				Semesters:     semesters,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "timetable %s  status=%s\n", res.TimetableID, res.Status)
			fmt.Fprintf(out, "fitness=%.2f  generations=%d  stop=%s\n", res.Fitness, res.Generations, res.StopReason)
			if res.Unassigned > 0 {
				fmt.Fprintf(out, "unassigned sessions: %d\n", res.Unassigned)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "timetable name (required)")
	cmd.Flags().StringSliceVar(&departments, "department", nil, "department IDs to schedule (required)")
	cmd.Flags().IntSliceVar(&years, "year", nil, "years to schedule (required)")
	cmd.Flags().IntSliceVar(&semesters, "semester", nil, "semesters to schedule (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall run timeout")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("department")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("semester")

	return cmd
}
