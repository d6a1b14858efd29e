package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/psjostrom/springa/internal/adapt"
	"github.com/psjostrom/springa/internal/ai"
	"github.com/psjostrom/springa/internal/bgmodel"
	"github.com/psjostrom/springa/internal/calendar"
	"github.com/psjostrom/springa/internal/cgm"
	"github.com/psjostrom/springa/internal/chart"
	"github.com/psjostrom/springa/internal/config"
	"github.com/psjostrom/springa/internal/intervals"
	"github.com/psjostrom/springa/internal/load"
	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/readiness"
	"github.com/psjostrom/springa/internal/report"
	"github.com/psjostrom/springa/internal/scheduler"
	"github.com/psjostrom/springa/internal/store"
	"github.com/psjostrom/springa/internal/stream"
	"github.com/psjostrom/springa/internal/tui"
	"github.com/psjostrom/springa/internal/workout"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "springa",
	Short: "Glucose-aware training planner",
	Long:  "springa analyzes how your glucose responds to running, adapts your upcoming plan and fueling, and tells you when you're good to go.",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze recent runs and rebuild the response model",
	RunE:  runAnalyze,
}

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Adapt the upcoming plan from the model and training load",
	RunE:  runAdapt,
}

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Check pre-run readiness from the live glucose feed",
	RunE:  runReadiness,
}

var reportCmd = &cobra.Command{
	Use:   "report [when]",
	Short: "Score a completed run (e.g. 'report yesterday')",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the upcoming plan",
	RunE:  runPlan,
}

var chartCmd = &cobra.Command{
	Use:   "chart [activity-id]",
	Short: "Render the model (or one run) as an HTML chart",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChart,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record how a run felt",
	RunE:  runFeedback,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the glucose feed and alert on readiness changes",
	RunE:  runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running watch",
	RunE:  runStop,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	analyzeCmd.Flags().Int("days", 30, "How many days back to analyze")
	analyzeCmd.Flags().Bool("force", false, "Re-analyze activities already in the store")
	adaptCmd.Flags().Bool("push", false, "Push adapted events back to the training platform")
	adaptCmd.Flags().String("ics", "", "Write the adapted plan to an iCalendar file")
	readinessCmd.Flags().String("category", "easy", "Workout category to assess for")
	planCmd.Flags().String("ics", "", "Write the plan to an iCalendar file")
	chartCmd.Flags().String("out", "", "Output HTML file (default model.html or run-<id>.html)")
	watchCmd.Flags().String("category", "easy", "Workout category to assess for")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(adaptCmd)
	rootCmd.AddCommand(readinessCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newIntervalsClient(cfg *config.Config, logger *slog.Logger) (*intervals.Client, error) {
	if cfg.Intervals.APIKey == "" {
		return nil, fmt.Errorf("intervals API key not configured — run 'springa config' to set it up")
	}
	return intervals.NewClient(cfg.Intervals.APIKey, cfg.Intervals.AthleteID, cfg.Intervals.BaseURL, 1*time.Hour, logger), nil
}

func newGlucoseClient(cfg *config.Config, logger *slog.Logger) (*cgm.Client, error) {
	if cfg.Nightscout.URL == "" {
		return nil, fmt.Errorf("nightscout URL not configured — run 'springa config' to set it up")
	}
	return cgm.NewClient(cfg.Nightscout.URL, cfg.Nightscout.Token, logger), nil
}

func newProvider(cfg *config.Config, logger *slog.Logger) ai.Provider {
	if cfg.AI.APIKey == "" {
		return nil
	}
	provider, err := ai.NewOpenAI(cfg.AI.APIKey, cfg.AI.Model, logger)
	if err != nil {
		return nil
	}
	return provider
}

func builderConfig(cfg *config.Config) bgmodel.Config {
	bc := bgmodel.DefaultConfig()
	bc.MediumConfidenceMin = cfg.Thresholds.MediumConfidence
	bc.HighConfidenceMin = cfg.Thresholds.HighConfidence
	bc.MinFuelGroups = cfg.Thresholds.MinFuelGroups
	bc.MinGroupSamples = cfg.Thresholds.MinGroupSamples
	return bc
}

func assessorThresholds(cfg *config.Config) readiness.Thresholds {
	t := readiness.DefaultThresholds()
	t.BGWaitBelow = cfg.Thresholds.BGWaitBelow
	t.BGCautionBelow = cfg.Thresholds.BGCautionBelow
	t.BGCautionAbove = cfg.Thresholds.BGCautionAbove
	t.SlopeWaitBelow = cfg.Thresholds.SlopeWaitBelow
	t.SlopeCutoff = cfg.Thresholds.SlopeCutoff
	t.Hypo = cfg.Thresholds.Hypo
	return t
}

func hrParams(cfg *config.Config) load.HRParams {
	params := load.DefaultHRParams()
	if cfg.Athlete.MaxHR > 0 {
		params.MaxHR = cfg.Athlete.MaxHR
	}
	if cfg.Athlete.RestingHR > 0 {
		params.RestingHR = cfg.Athlete.RestingHR
	}
	return params
}

// fetchCompleted pulls activities with streams for the given range.
func fetchCompleted(ctx context.Context, client *intervals.Client, oldest, newest time.Time) ([]model.CompletedEvent, error) {
	activities, err := client.ListActivities(ctx, oldest, newest)
	if err != nil {
		return nil, err
	}

	events := make([]model.CompletedEvent, 0, len(activities))
	for _, act := range activities {
		streams, err := client.GetStreams(ctx, act.ID)
		if err != nil {
			fmt.Printf("Warning: skipping %s, streams unavailable: %v\n", act.ID, err)
			continue
		}
		events = append(events, intervals.ToCompletedEvent(act, streams))
	}
	return events, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	client, err := newIntervalsClient(cfg, logger)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	lthr := cfg.Athlete.LTHR
	if athlete, err := client.GetAthlete(ctx); err == nil && athlete.LTHR > 0 {
		lthr = athlete.LTHR
	}

	extractor := stream.NewExtractor()
	classifier := stream.NewClassifier(model.ZonesFromLTHR(lthr))
	classifier.SlopeCutoff = cfg.Thresholds.SlopeCutoff

	events, err := fetchCompleted(ctx, client, now.AddDate(0, 0, -days), now)
	if err != nil {
		return fmt.Errorf("fetching activities: %w", err)
	}

	analyzed := 0
	for _, ev := range events {
		if !force {
			done, err := db.HasActivity(ev.ID)
			if err != nil {
				return err
			}
			if done {
				continue
			}
		}

		windows := extractor.Windows(ev.Glucose, ev.HR, ev.Pace)
		obs := classifier.Observations(ev, windows)
		if len(obs) == 0 {
			continue
		}
		if err := db.InsertObservations(ev.ID, obs); err != nil {
			return fmt.Errorf("storing observations for %s: %w", ev.ID, err)
		}
		analyzed++
	}

	obs, err := db.GetObservations()
	if err != nil {
		return fmt.Errorf("loading observations: %w", err)
	}
	if len(obs) == 0 {
		fmt.Println("No analyzable runs yet. Runs need glucose data and at least 12 minutes of samples.")
		return nil
	}

	m := bgmodel.NewBuilder(builderConfig(cfg), logger).Build(obs)
	if err := db.SaveModel(m); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}

	fmt.Printf("Analyzed %d new runs (%d total, %d observations).\n\n",
		analyzed, m.ActivitiesAnalyzed, len(m.Observations))
	printModel(m)
	return nil
}

func printModel(m *model.BGResponseModel) {
	fmt.Println("Glucose response by category:")
	for _, cat := range model.Categories {
		stats, ok := m.Categories[cat]
		if !ok {
			continue
		}
		fmt.Printf("  %-9s avg %+.2f, median %+.2f mmol/10min  (%d runs, %s confidence)\n",
			cat, stats.AvgRate, stats.MedianRate, stats.ActivityCount, stats.Confidence)
	}

	if len(m.ByStartLevel) > 0 {
		fmt.Println("\nBy starting level:")
		for _, b := range m.ByStartLevel {
			fmt.Printf("  %-7s avg %+.2f mmol/10min  (%d samples)\n", b.Bucket, b.AvgRate, b.SampleCount)
		}
	}

	if len(m.TargetFuelRates) > 0 {
		fmt.Println("\nTarget fueling:")
		for _, t := range m.TargetFuelRates {
			fmt.Printf("  %-9s %.0f g/h (currently %.0f, %s, %s confidence)\n",
				t.Category, t.TargetFuelRate, t.CurrentAvgFuel, t.Method, t.Confidence)
		}
	}
}

func runAdapt(cmd *cobra.Command, args []string) error {
	push, _ := cmd.Flags().GetBool("push")
	icsPath, _ := cmd.Flags().GetString("ics")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	client, err := newIntervalsClient(cfg, logger)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	m, err := db.LoadLatestModel()
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	if m == nil {
		return fmt.Errorf("no model built yet — run 'springa analyze' first")
	}

	// Training load needs about six weeks of history for a stable CTL.
	history, err := fetchCompleted(ctx, client, now.AddDate(0, 0, -49), now)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}
	trainingLoad := load.FromEvents(history, hrParams(cfg), now)

	rawEvents, err := client.ListEvents(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return fmt.Errorf("fetching plan: %w", err)
	}
	plan := make([]model.PlannedEvent, 0, len(rawEvents))
	for _, e := range rawEvents {
		plan = append(plan, intervals.ToPlannedEvent(e))
	}
	if len(plan) == 0 {
		fmt.Println("No upcoming events to adapt.")
		return nil
	}

	feedback, err := db.RecentFeedback(5)
	if err != nil {
		return fmt.Errorf("loading feedback: %w", err)
	}

	engineCfg := adapt.DefaultConfig()
	engineCfg.MaxEvents = cfg.Adapt.MaxEvents
	engineCfg.NoteTimeout = time.Duration(cfg.Adapt.NoteTimeoutSeconds) * time.Second
	engineCfg.TSBSwapThreshold = cfg.Thresholds.TSBSwapThreshold
	engineCfg.RampSwapThreshold = cfg.Thresholds.RampSwapThreshold

	engine := adapt.NewEngine(engineCfg, newProvider(cfg, logger), logger)
	result, err := engine.Adapt(ctx, adapt.Input{
		Plan:     plan,
		Model:    m,
		Load:     trainingLoad,
		Recent:   recentRunSummaries(history),
		Feedback: feedback,
	})
	if err != nil {
		return fmt.Errorf("adapting plan: %w", err)
	}

	if err := db.InsertChanges(result); err != nil {
		return fmt.Errorf("recording changes: %w", err)
	}

	fmt.Printf("Training load: CTL %.0f  ATL %.0f  TSB %.0f  ramp %+.1f bpm/week\n\n",
		trainingLoad.CTL, trainingLoad.ATL, trainingLoad.TSB, trainingLoad.RampRate)
	printAdapted(result)

	if icsPath != "" {
		if err := writeICS(icsPath, result); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", icsPath)
	}

	if push {
		for _, ev := range result.Events {
			update := intervals.EventUpdate{
				Description:  ev.Description(),
				CarbsPlanned: ev.FuelRate * float64(ev.Event.DurationSec) / 3600,
			}
			if err := client.UpdateEvent(ctx, ev.Event.ID, update); err != nil {
				fmt.Printf("Warning: pushing %s failed: %v\n", ev.Event.ID, err)
				continue
			}
		}
		fmt.Println("\nPushed adapted events to the platform.")
	}

	return nil
}

func printAdapted(result *adapt.Result) {
	for _, ev := range result.Events {
		fmt.Printf("%s  %s run  %.0f g/h\n",
			ev.Event.Date.Format("Mon Jan 2"), ev.Event.Category, ev.FuelRate)
		if structure := workout.Render(ev.Structure); structure != "" {
			fmt.Printf("  %s\n", structure)
		}
		for _, c := range ev.Changes {
			fmt.Printf("  ! %s\n", c.Detail)
		}
		if ev.Notes != "" {
			fmt.Printf("  > %s\n", ev.Notes)
		}
		fmt.Println()
	}
	if !result.Changed() {
		fmt.Println("No changes needed.")
	}
}

// recentRunSummaries condenses the last few runs of each category for the
// note generator.
func recentRunSummaries(history []model.CompletedEvent) map[model.Category][]ai.RunSummary {
	sorted := make([]model.CompletedEvent, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.After(sorted[j].Start) })

	scorer := report.NewScorer()
	out := make(map[model.Category][]ai.RunSummary)
	for _, ev := range sorted {
		if len(out[ev.Category]) >= 3 {
			continue
		}
		card := scorer.Score(ev)
		if card.BG == nil {
			continue
		}
		out[ev.Category] = append(out[ev.Category], ai.RunSummary{
			Date:        ev.Start,
			Description: fmt.Sprintf("%d min %s", ev.DurationSec/60, ev.Category),
			BGRatePer10: card.BG.RatePer10Min,
			FuelRate:    ev.FuelRate,
			MinGlucose:  card.BG.MinGlucose,
		})
	}
	return out
}

func writeICS(path string, result *adapt.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := calendar.Write(f, calendar.FromAdapted(result)); err != nil {
		return err
	}
	return nil
}

func runReadiness(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	glucose, err := newGlucoseClient(cfg, logger)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	reading, err := glucose.Latest(ctx)
	if err != nil {
		return fmt.Errorf("fetching glucose: %w", err)
	}

	m, err := db.LoadLatestModel()
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	assessor := readiness.NewAssessor(assessorThresholds(cfg))
	guidance := assessor.Assess(*reading, m, model.ParseCategory(category))

	trend := "no trend data"
	if reading.TrendSlope != nil {
		trend = fmt.Sprintf("%+.1f mmol/10min", *reading.TrendSlope)
	}
	fmt.Printf("BG %.1f mmol/L (%s)\n\n", reading.Mmol, trend)
	fmt.Printf("Readiness: %s\n", guidance.Level)
	for _, r := range guidance.Reasons {
		fmt.Printf("  - %s\n", r)
	}
	if guidance.EstimatedBGAt30m != nil {
		fmt.Printf("\nForecast: %.1f mmol/L in 30 min (%+.1f)\n",
			*guidance.EstimatedBGAt30m, *guidance.PredictedDrop)
	}
	for _, s := range guidance.Suggestions {
		fmt.Printf("  %s\n", s)
	}

	if cfg.Notifications.Enabled && guidance.Level != model.LevelReady {
		if err := readiness.Notify(guidance); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	when := "yesterday"
	if len(args) > 0 {
		when = args[0]
	}
	day, err := naturaldate.Parse(when, time.Now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", when, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	client, err := newIntervalsClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	events, err := fetchCompleted(ctx, client, start, start.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("fetching activities: %w", err)
	}
	if len(events) == 0 {
		fmt.Printf("No runs on %s.\n", start.Format("Mon Jan 2"))
		return nil
	}

	scorer := report.NewScorer()
	scorer.Hypo = cfg.Thresholds.Hypo
	scorer.SlopeCutoff = cfg.Thresholds.SlopeCutoff

	for _, ev := range events {
		printCard(ev, scorer.Score(ev))
	}
	return nil
}

func printCard(ev model.CompletedEvent, card report.Card) {
	fmt.Printf("%s  %s run, %d min\n", ev.Start.Format("Mon Jan 2 15:04"), ev.Category, ev.DurationSec/60)

	if card.BG != nil {
		extra := ""
		if card.BG.Hypo {
			extra = ", went hypo"
		}
		fmt.Printf("  BG stability   %-4s  %+.1f mmol/10min, low %.1f%s\n",
			card.BG.Rating, card.BG.RatePer10Min, card.BG.MinGlucose, extra)
	}
	if card.Zones != nil {
		fmt.Printf("  HR zones       %-4s  %.0f%% in target\n", card.Zones.Rating, card.Zones.PctInTarget)
	}
	if card.Fuel != nil {
		fmt.Printf("  Fueling        %-4s  %.0f%% of plan (%.0f of %.0f g)\n",
			card.Fuel.Rating, card.Fuel.Pct, card.Fuel.ActualCarbs, card.Fuel.PlannedCarbs)
	}
	if card.EntryTrend != nil {
		fmt.Printf("  Entry trend    %-4s  %s (%+.1f mmol/10min)\n",
			card.EntryTrend.Rating, card.EntryTrend.Bucket, card.EntryTrend.Slope)
	}
	if card.Recovery != nil {
		fmt.Printf("  Recovery       %-4s  rebounded %+.1f mmol/L\n", card.Recovery.Rating, card.Recovery.Rebound)
	}
	fmt.Println()
}

func runPlan(cmd *cobra.Command, args []string) error {
	icsPath, _ := cmd.Flags().GetString("ics")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	client, err := newIntervalsClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now()
	rawEvents, err := client.ListEvents(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return fmt.Errorf("fetching plan: %w", err)
	}
	if len(rawEvents) == 0 {
		fmt.Println("Nothing planned for the next week.")
		return nil
	}

	result := &adapt.Result{RunID: "plan", RunAt: now}
	for _, e := range rawEvents {
		planned := intervals.ToPlannedEvent(e)
		fmt.Printf("%s  %-9s %.0f g/h  %s\n",
			planned.Date.Format("Mon Jan 2"), planned.Category, planned.FuelRate, planned.Description)
		result.Events = append(result.Events, adapt.AdaptedEvent{
			Event:     planned,
			FuelRate:  planned.FuelRate,
			Structure: workout.Parse(planned.Description),
		})
	}

	if icsPath != "" {
		if err := writeICS(icsPath, result); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", icsPath)
	}
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	if len(args) == 0 {
		db, err := store.Open()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		m, err := db.LoadLatestModel()
		if err != nil {
			return fmt.Errorf("loading model: %w", err)
		}
		if m == nil {
			return fmt.Errorf("no model built yet — run 'springa analyze' first")
		}

		if out == "" {
			out = "model.html"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()

		if err := chart.RenderModel(f, m); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	}

	client, err := newIntervalsClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	activityID := args[0]
	streams, err := client.GetStreams(ctx, activityID)
	if err != nil {
		return fmt.Errorf("fetching streams: %w", err)
	}
	ev := intervals.ToCompletedEvent(intervals.Activity{ID: activityID, StartDate: time.Now()}, streams)

	if out == "" {
		out = fmt.Sprintf("run-%s.html", activityID)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := chart.RenderRun(f, ev); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	app := tui.NewApp(time.Now(), db)
	p := tea.NewProgram(app)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running feedback form: %w", err)
	}

	result := app.GetResult()
	if result != nil && result.Skipped {
		fmt.Println("Feedback skipped.")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	glucose, err := newGlucoseClient(cfg, logger)
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	watcher := scheduler.New(
		glucose,
		readiness.NewAssessor(assessorThresholds(cfg)),
		db,
		model.ParseCategory(category),
		time.Duration(cfg.Watch.IntervalMinutes)*time.Minute,
		cfg.Notifications.Enabled,
		logger,
	)
	return watcher.Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to springa watch (PID %d)\n", pid)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
