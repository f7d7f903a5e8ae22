package main

import (
	"fmt"
	"log"
	"regexp"
	"runtime"

	"github.com/mdouchement/clouddrive/internal/client"
	"github.com/mdouchement/clouddrive/internal/config"
	"github.com/mdouchement/clouddrive/internal/database"
	"github.com/mdouchement/clouddrive/internal/scheduler"
	"github.com/mdouchement/clouddrive/internal/storage"
	"github.com/mdouchement/clouddrive/internal/webserver"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	binding string
	port    string

	serverURL string
	chunkSize int64
	parallel  int
)

func main() {
	c := &cobra.Command{
		Use:     "clouddrive",
		Short:   "Self-hosted file storage with resumable chunked uploads",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for clouddrive",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(c.Version)
		},
	})
	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)

	serverCmd.Flags().StringVarP(&binding, "binding", "b", "0.0.0.0", "Server's binding")
	serverCmd.Flags().StringVarP(&port, "port", "p", "3000", "Server's port")
	c.AddCommand(serverCmd)

	uploadCmd.Flags().StringVar(&serverURL, "url", "http://localhost:3000", "Server's URL")
	uploadCmd.Flags().Int64Var(&chunkSize, "chunk-size", client.DefaultChunkSize, "Size of the uploaded chunks in bytes")
	uploadCmd.Flags().IntVar(&parallel, "parallel", 3, "Number of files uploaded concurrently")
	c.AddCommand(uploadCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return database.Init(cfg.DatabaseDriver, cfg.DatabasePath)
		},
	}

	//

	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the database (storm driver only)",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseDriver != config.DriverStorm {
				return errors.Errorf("reindex is not supported by the %s driver", cfg.DatabaseDriver)
			}
			return database.StormReIndex(cfg.DatabasePath)
		},
	}

	//

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctrl := webserver.Controller{
				Version: c.Parent().Version,
				Logger:  newLogger(),
			}

			//

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabasePath)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()
			ctrl.Database = database.NewCached(db, cfg.CacheSize, cfg.CacheTTL)

			//

			ctrl.Storage = storage.NewFileSystem(cfg.StoragePath)

			//

			cron, err := scheduler.Start(scheduler.Controller{
				Logger:        ctrl.Logger,
				Storage:       ctrl.Storage,
				Specification: cfg.CleanupSchedule,
				StagingTTL:    cfg.StagingTTL,
			})
			if err != nil {
				return err
			}
			defer cron.Stop()

			//

			engine := webserver.EchoEngine(ctrl)
			webserver.PrintRoutes(engine)

			listen := fmt.Sprintf("%s:%s", binding, port)
			ctrl.Logger.Infof("Server listening on %s", listen)
			return errors.Wrap(
				engine.Start(listen),
				"could not run server",
			)
		},
	}

	//

	uploadCmd = &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload files to a running server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if chunkSize <= 0 {
				return errors.New("chunk size must be positive")
			}

			cli := client.New(serverURL, newLogger())
			cli.ChunkSize = chunkSize

			files, err := cli.UploadFiles(c.Context(), args, parallel, func(p client.Progress) {
				fmt.Printf("%s: %d/%d chunks (%d/%d bytes)\n", p.Filename, p.Chunk, p.TotalChunks, p.Sent, p.Size)
			})
			if err != nil {
				return err
			}

			for _, file := range files {
				fmt.Printf("#%d %s (%s bytes)\n", file.ID, file.OriginalName, file.Filesize)
			}
			return nil
		},
	}
)

func newLogger() logger.Logger {
	log := logrus.New()
	log.SetFormatter(&logger.LogrusTextFormatter{
		DisableColors:   false,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger.WrapLogrus(log)
}
