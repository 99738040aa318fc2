package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reelsmaker/internal/composer"
	"reelsmaker/internal/compositor"
	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/storage"
)

const lockFileName = ".reelsctl.lock"

func newComposeCommand(ctx *cliContext) *cobra.Command {
	flags := &planFlags{}
	var (
		outDir    string
		assetsDir string
		ffmpeg    string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Plan, render and record a reel into a local WebM file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			lock := flock.New(filepath.Join(outDir, lockFileName))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock output dir: %w", err)
			}
			if !locked {
				return fmt.Errorf("another compose is writing to %s", outDir)
			}
			defer lock.Unlock()

			logger := infra.NewStderrLogger("development")
			if !verbose {
				logger = logger.Level(zerolog.WarnLevel)
			}

			c := ctx.client()
			reels, err := newLocalComposer(c, assetsDir, ffmpeg, logger)
			if err != nil {
				return err
			}
			session := composer.NewSession(reels)
			defer session.Reset()

			out := cmd.OutOrStdout()
			progress := newProgressPrinter(out)
			final, err := session.Generate(cmd.Context(), composer.Request{Plan: req}, progress.observe)
			progress.done()
			if err != nil {
				if final.Status == domain.StatusError {
					return fmt.Errorf("%s (%w)", composer.FailureMessage, err)
				}
				return err
			}

			saved, err := saveResult(cmd.Context(), outDir, final)
			if err != nil {
				return err
			}
			if ctx.json {
				return printJSON(out, map[string]any{"job": final, "files": saved})
			}
			fmt.Fprintln(out, renderPairs([][2]string{
				{"Job", final.ID},
				{"Duration", fmt.Sprintf("%.1f s", final.Result.DurationMs/1000)},
				{"Video", saved["video"]},
				{"Thumbnail", saved["thumbnail"]},
				{"Size", fmt.Sprintf("%d bytes", final.Result.Video.Bytes)},
			}))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory that receives the reel and thumbnail")
	cmd.Flags().StringVar(&assetsDir, "assets", "", "Local directory for site-relative visuals (defaults to fetching them from --server)")
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", envOr("FFMPEG_PATH", "ffmpeg"), "Path to the ffmpeg binary")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline details to stderr")
	return cmd
}

func newLocalComposer(c *apiClient, assetsDir, ffmpegPath string, logger infra.Logger) (*composer.Composer, error) {
	comp, err := compositor.New()
	if err != nil {
		return nil, err
	}
	loader := compositor.NewLoader(assetsDir, &http.Client{Timeout: 30 * time.Second})
	var assets compositor.AssetLoader = loader
	if assetsDir == "" {
		assets = serverAssets{base: strings.TrimRight(c.base, "/"), loader: loader}
	}
	ff := composer.NewFFmpeg(ffmpegPath)
	return composer.New(composer.Options{
		Planner:    &composer.HTTPPlanner{BaseURL: c.base, Token: c.token, Client: c.http},
		Decoder:    ff,
		Recorder:   ff,
		Compositor: comp,
		Assets:     assets,
		Logger:     logger,
	})
}

// serverAssets resolves site-relative visuals against the API host.
type serverAssets struct {
	base   string
	loader *compositor.Loader
}

func (s serverAssets) Load(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "/") {
		ref = s.base + ref
	}
	return s.loader.Load(ctx, ref)
}

// saveResult copies the finished reel out of the job's temp dir.
func saveResult(ctx context.Context, outDir string, st composer.JobState) (map[string]string, error) {
	files, err := storage.NewFileStore(outDir, "")
	if err != nil {
		return nil, err
	}
	videoKey, err := files.CopyFile(ctx, "reel-"+st.ID+".webm", st.Result.Video.Path)
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	thumbKey, err := files.CopyFile(ctx, "reel-"+st.ID+".png", st.Result.Thumbnail.Path)
	if err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}
	return map[string]string{
		"video":     filepath.Join(outDir, videoKey),
		"thumbnail": filepath.Join(outDir, thumbKey),
	}, nil
}

// progressPrinter redraws one line on a terminal and prints status changes
// otherwise.
type progressPrinter struct {
	w        io.Writer
	terminal bool
	last     domain.CompositionStatus
	drawn    bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	terminal := false
	if f, ok := w.(*os.File); ok {
		terminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressPrinter{w: w, terminal: terminal}
}

func (p *progressPrinter) observe(st composer.JobState) {
	if p.terminal {
		fmt.Fprintf(p.w, "\r%-10s %3.0f%%", st.Status, st.Progress*100)
		p.drawn = true
		return
	}
	if st.Status != p.last {
		fmt.Fprintf(p.w, "%s %.0f%%\n", st.Status, st.Progress*100)
		p.last = st.Status
	}
}

func (p *progressPrinter) done() {
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}
