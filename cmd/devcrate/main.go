package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/devcrate/devcrate/internal/backup"
	"github.com/devcrate/devcrate/internal/compose"
	"github.com/devcrate/devcrate/internal/constants"
	"github.com/devcrate/devcrate/internal/docker"
	"github.com/devcrate/devcrate/internal/dockerfile"
	"github.com/devcrate/devcrate/internal/hostenv"
	"github.com/devcrate/devcrate/internal/logging"
	"github.com/devcrate/devcrate/internal/platform"
	"github.com/devcrate/devcrate/internal/settings"
	"github.com/devcrate/devcrate/internal/state"
	"github.com/devcrate/devcrate/internal/terminal"
	"github.com/devcrate/devcrate/internal/workspace"
)

var version = "0.4.0"

var verbose bool

var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devcrate",
		Short: "Containerized development environment manager",
		Long: "devcrate provisions, manages, and backs up a single long-lived containerized\n" +
			"development environment: multi-language toolchain, web-based editor, and an\n" +
			"AI coding assistant, all delegated to docker and docker compose.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose, os.Stderr)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newListBackupsCmd(),
		newSetupHubCmd(),
		newShellCmd(),
		newLogsCmd(),
		newStatusCmd(),
		newCleanCmd(),
		newCheckDepsCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv resolves the host layout and settings used by most commands.
func loadEnv() (*hostenv.Paths, settings.Settings, error) {
	paths, err := hostenv.NewPaths()
	if err != nil {
		return nil, settings.Settings{}, err
	}

	cfg, err := settings.Load(paths.SettingsPath(), paths.HomeDir())
	if err != nil {
		return nil, settings.Settings{}, err
	}

	return paths, cfg, nil
}

// generateFiles writes the compose file, Dockerfile, and entrypoint
// into the state directory.
func generateFiles(paths *hostenv.Paths, cfg settings.Settings) error {
	if err := paths.EnsureDirs(cfg.WorkspaceDir); err != nil {
		return err
	}

	if _, err := dockerfile.Write(dockerfile.DefaultParams(), paths.StateDir()); err != nil {
		return err
	}
	if _, err := compose.Write(cfg, paths.StateDir()); err != nil {
		return err
	}
	return nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the compose file and Dockerfile",
		Long: "Writes the orchestration-configuration file, the image-build file, and the\n" +
			"container startup script into the state directory. Regenerates them if present.",
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	if err := generateFiles(paths, cfg); err != nil {
		return err
	}

	fmt.Printf("Generated %s\n", compose.PathIn(paths.StateDir()))
	fmt.Printf("Generated %s\n", dockerfile.PathIn(paths.StateDir()))
	return nil
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the development environment",
		RunE:  runStart,
	}

	cmd.Flags().Bool("regenerate", false, "Rewrite generated files before starting")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	regenerate, err := cmd.Flags().GetBool("regenerate")
	if err != nil {
		return fmt.Errorf("invalid regenerate flag: %w", err)
	}

	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	engine := docker.NewManager()
	if err := engine.CheckDaemon(); err != nil {
		return err
	}

	if err := paths.EnsureDirs(cfg.WorkspaceDir); err != nil {
		return err
	}

	// Generate missing orchestration files; --regenerate forces it.
	if regenerate ||
		!hostenv.FileExists(compose.PathIn(paths.StateDir())) ||
		!hostenv.FileExists(dockerfile.PathIn(paths.StateDir())) {
		fmt.Println("Generating environment files...")
		if err := generateFiles(paths, cfg); err != nil {
			return err
		}
	}

	if !engine.ImageExists(cfg.Image) {
		fmt.Printf("Image %s not found. Building (this may take a while)...\n", cfg.Image)
	}

	runner := compose.NewRunner(paths.StateDir())

	// A regenerate implies the image definition may have changed.
	if regenerate {
		if err := runner.Build(context.Background()); err != nil {
			return err
		}
	}

	if err := runner.Up(context.Background()); err != nil {
		return err
	}

	fmt.Println("Environment started.")
	fmt.Printf("Web editor: http://localhost:%d\n", cfg.EditorPort)
	fmt.Println("Run 'devcrate shell' to open a shell inside the environment.")
	return nil
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the environment (container is kept)",
		RunE:  runStop,
	}
}

func runStop(cmd *cobra.Command, args []string) error {
	paths, _, err := loadEnv()
	if err != nil {
		return err
	}

	runner := compose.NewRunner(paths.StateDir())
	if err := runner.Stop(context.Background()); err != nil {
		return err
	}

	fmt.Println("Environment stopped. Run 'devcrate start' to resume.")
	return nil
}

func newRestartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the environment",
		RunE:  runRestart,
	}

	cmd.Flags().Bool("regenerate", false, "Rewrite generated files before restarting")

	return cmd
}

func runRestart(cmd *cobra.Command, args []string) error {
	if err := runStop(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: stop failed, attempting start anyway: %v\n", err)
	}
	return runStart(cmd, args)
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the container and archive the workspace",
		Long: "Commits the environment container to a timestamped image tag and writes a\n" +
			"compressed archive of the workspace directory into the backups directory.",
		RunE: runBackup,
	}

	cmd.Flags().Bool("push", false, "Also push the image snapshot to the configured hub repository")

	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	push, err := cmd.Flags().GetBool("push")
	if err != nil {
		return fmt.Errorf("invalid push flag: %w", err)
	}

	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	engine := docker.NewManager()
	if err := engine.CheckDaemon(); err != nil {
		return err
	}

	fmt.Println("Creating backup...")
	result, err := backup.NewEngine(cfg, paths.BackupsDir()).Create(push)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// Parseable output for scripts wrapping devcrate.
	fmt.Printf("STAMP=%s\n", result.Artifact.Stamp)
	if result.Artifact.HasImage {
		fmt.Printf("IMAGE=%s\n", result.Artifact.ImageTag())
	}
	if result.Artifact.HasArchive {
		fmt.Printf("ARCHIVE=%s\n", result.Artifact.Archive)
	}
	if result.Meta.HubRef != "" {
		fmt.Printf("HUB_REF=%s\n", result.Meta.HubRef)
	}

	fmt.Fprintln(os.Stderr, "Backup complete.")
	return nil
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [stamp]",
		Short: "Restore the environment from a backup",
		Long: "Re-points the environment image at a backup snapshot. With --workspace the\n" +
			"workspace archive is unpacked over the workspace directory as well.\n" +
			"Omit the stamp or pass 'latest' to use the newest backup.",
		Args: cobra.MaximumNArgs(1),
		RunE: runRestore,
	}

	cmd.Flags().Bool("workspace", false, "Also unpack the workspace archive")
	cmd.Flags().Bool("yes", false, "Skip confirmation prompts")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	withWorkspace, err := cmd.Flags().GetBool("workspace")
	if err != nil {
		return fmt.Errorf("invalid workspace flag: %w", err)
	}
	assumeYes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("invalid yes flag: %w", err)
	}

	stamp := "latest"
	if len(args) == 1 {
		stamp = args[0]
	}

	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	engine := docker.NewManager()
	if err := engine.CheckDaemon(); err != nil {
		return err
	}

	if withWorkspace {
		ok, err := terminal.Confirm(
			fmt.Sprintf("Overwrite files in %s with the archived workspace?", cfg.WorkspaceDir),
			assumeYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	res, err := backup.NewEngine(cfg, paths.BackupsDir()).Restore(stamp, withWorkspace)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println(res.Describe(cfg.Image))
	if withWorkspace {
		fmt.Printf("Workspace archive unpacked into %s\n", cfg.WorkspaceDir)
	}
	if res.ImageRestored {
		fmt.Println("Run 'devcrate restart' to start the environment from the restored image.")
	}
	return nil
}

func newListBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-backups",
		Short: "List backup artifacts",
		RunE:  runListBackups,
	}
}

func runListBackups(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	artifacts, err := backup.NewEngine(cfg, paths.BackupsDir()).List()
	if err != nil {
		return err
	}

	if len(artifacts) == 0 {
		fmt.Println("No backups found. Run 'devcrate backup' to create one.")
		return nil
	}

	fmt.Printf("%-17s  %-7s  %s\n", "STAMP", "IMAGE", "ARCHIVE")
	for _, a := range artifacts {
		image := "-"
		if a.HasImage {
			image = "yes"
		}
		archive := "-"
		if a.HasArchive {
			archive = a.Archive
		}
		fmt.Printf("%-17s  %-7s  %s\n", a.Stamp, image, archive)
	}
	return nil
}

func newSetupHubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup-hub [owner/name]",
		Short: "Configure the backup hub repository",
		Long: "Records the backup repository identifier (owner/name) in the settings file.\n" +
			"With --login, authenticates docker against the registry as well.",
		Args: cobra.MaximumNArgs(1),
		RunE: runSetupHub,
	}

	cmd.Flags().Bool("login", false, "Run docker login for the hub registry")

	return cmd
}

func runSetupHub(cmd *cobra.Command, args []string) error {
	login, err := cmd.Flags().GetBool("login")
	if err != nil {
		return fmt.Errorf("invalid login flag: %w", err)
	}

	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	var hubRepo string
	if len(args) == 1 {
		hubRepo = args[0]
	} else {
		// Suggest a repository name from the local user and the
		// workspace identity.
		suggestion := cfg.HubRepo
		if suggestion == "" {
			if u, uerr := user.Current(); uerr == nil {
				name := strings.ToLower(workspace.SanitizeName(filepath.Base(cfg.WorkspaceDir)))
				suggestion = strings.ToLower(u.Username) + "/" + name
			}
		}
		hubRepo, err = terminal.PromptWithDefault("Backup repository (owner/name)", suggestion)
		if err != nil {
			return err
		}
	}

	if err := settings.ValidateHubRepo(hubRepo); err != nil {
		return err
	}

	cfg.HubRepo = hubRepo
	if err := cfg.Save(paths.SettingsPath()); err != nil {
		return err
	}
	fmt.Printf("HUB_REPO=%s\n", hubRepo)
	fmt.Fprintf(os.Stderr, "Hub repository saved to %s\n", paths.SettingsPath())

	if login {
		owner := hubRepo[:strings.Index(hubRepo, "/")]
		username, err := terminal.PromptWithDefault("Registry username", owner)
		if err != nil {
			return err
		}
		password, err := terminal.ReadPassword("Registry password or access token: ")
		if err != nil {
			return err
		}

		engine := docker.NewManager()
		if err := engine.Login(username, strings.NewReader(password)); err != nil {
			return err
		}
	}

	return nil
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell in the environment",
		RunE:  runShell,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	engine := docker.NewManager()
	if err := engine.CheckDaemon(); err != nil {
		return err
	}

	if !engine.IsRunning(cfg.Container) {
		return fmt.Errorf("environment is not running. Run 'devcrate start' first")
	}

	// Hands the terminal over to docker exec; does not return on success.
	return engine.ExecShell(cfg.Container)
}

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show environment logs",
		RunE:  runLogs,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().String("tail", "", "Number of lines to show from the end of the logs")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	follow, err := cmd.Flags().GetBool("follow")
	if err != nil {
		return fmt.Errorf("invalid follow flag: %w", err)
	}
	tail, err := cmd.Flags().GetString("tail")
	if err != nil {
		return fmt.Errorf("invalid tail flag: %w", err)
	}

	paths, _, err := loadEnv()
	if err != nil {
		return err
	}

	runner := compose.NewRunner(paths.StateDir())
	return runner.Logs(context.Background(), follow, tail)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment status",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	detector := state.NewDetector(paths.StateDir(), cfg)
	envState := detector.Detect()

	fmt.Println(titleStyle.Render("Devcrate Environment Status"))
	fmt.Println()

	fmt.Printf("State dir:   %s", envState.StateDir)
	if !envState.StateDirExists {
		fmt.Print(" (missing)")
	}
	fmt.Println()

	fmt.Printf("Workspace:   %s", envState.WorkspaceDir)
	if !envState.WorkspaceExists {
		fmt.Print(" (missing)")
	}
	fmt.Println()

	if envState.GeneratedFilesPresent() {
		runner := compose.NewRunner(paths.StateDir())
		if err := runner.ConfigCheck(context.Background()); err != nil {
			fmt.Println("Generated:   compose file present but invalid (run 'devcrate init')")
		} else {
			fmt.Println("Generated:   compose file and Dockerfile present")
		}
	} else {
		fmt.Println("Generated:   incomplete (run 'devcrate init')")
	}

	if envState.ImageExists {
		fmt.Printf("Image:       %s (built)\n", envState.ImageName)
	} else {
		fmt.Printf("Image:       %s (not built)\n", envState.ImageName)
	}

	switch {
	case envState.ContainerRunning:
		fmt.Printf("Container:   Running (%s)\n", envState.ContainerName)
		fmt.Printf("Editor:      %s\n", envState.EditorURL())
	case envState.ContainerExists:
		fmt.Printf("Container:   Stopped (%s)\n", envState.ContainerName)
	default:
		fmt.Println("Container:   Not created")
	}

	if envState.HubRepo != "" {
		fmt.Printf("Hub:         %s\n", envState.HubRepo)
	} else {
		fmt.Println("Hub:         Not configured (run 'devcrate setup-hub')")
	}

	// Parseable one-word state for scripts wrapping devcrate.
	fmt.Printf("\nSTATE=%s\n", envState.Summary())

	if err := detector.CheckDaemon(); err != nil {
		fmt.Fprintf(os.Stderr, "\nWarning: docker daemon is not reachable, %s\n", platform.EngineHint())
	}

	return nil
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the container, and optionally the image and generated files",
		Long: "Stops and removes the environment container. The workspace directory and\n" +
			"backup artifacts are never touched.",
		RunE: runClean,
	}

	cmd.Flags().Bool("image", false, "Also remove the environment image")
	cmd.Flags().Bool("files", false, "Also remove the generated files")
	cmd.Flags().Bool("yes", false, "Skip confirmation prompt")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	removeImage, err := cmd.Flags().GetBool("image")
	if err != nil {
		return fmt.Errorf("invalid image flag: %w", err)
	}
	removeFiles, err := cmd.Flags().GetBool("files")
	if err != nil {
		return fmt.Errorf("invalid files flag: %w", err)
	}
	assumeYes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("invalid yes flag: %w", err)
	}

	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	targets := []string{"container"}
	if removeImage {
		targets = append(targets, "image")
	}
	if removeFiles {
		targets = append(targets, "generated files")
	}

	ok, err := terminal.Confirm("Remove "+strings.Join(targets, ", ")+"?", assumeYes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Clean cancelled.")
		return nil
	}

	engine := docker.NewManager()
	if err := engine.CheckDaemon(); err != nil {
		return err
	}

	runner := compose.NewRunner(paths.StateDir())
	if hostenv.FileExists(compose.PathIn(paths.StateDir())) {
		if err := runner.Down(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: compose down failed: %v\n", err)
			// Fall back to removing the container directly.
			if err := engine.RemoveContainer(cfg.Container); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: container removal failed: %v\n", err)
			}
		}
	} else if err := engine.RemoveContainer(cfg.Container); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: container removal failed: %v\n", err)
	}
	fmt.Println("Container removed.")

	if removeImage {
		if err := engine.RemoveImage(cfg.Image); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: image removal failed: %v\n", err)
		} else {
			fmt.Printf("Image %s removed.\n", cfg.Image)
		}
	}

	if removeFiles {
		for _, path := range []string{
			compose.PathIn(paths.StateDir()),
			dockerfile.PathIn(paths.StateDir()),
		} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: could not remove %s: %v\n", path, err)
			}
		}
		fmt.Println("Generated files removed.")
	}

	return nil
}

func newCheckDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-deps",
		Short: "Check host dependencies",
		RunE:  runCheckDeps,
	}
}

func runCheckDeps(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadEnv()
	if err != nil {
		return err
	}

	checks := hostenv.CheckDeps()
	for _, c := range checks {
		fmt.Println(c.Describe())
	}

	fmt.Println()
	for _, f := range hostenv.CheckHostFiles(paths.HomeDir()) {
		if f.Exists {
			fmt.Printf("%-40s present\n", f.Path)
		} else {
			fmt.Printf("%-40s absent (optional)\n", f.Path)
		}
	}

	// Directory checks double as creation: missing directories in the
	// fixed layout are created here, idempotently.
	if err := paths.EnsureDirs(cfg.WorkspaceDir); err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("State dir:    %s\n", paths.StateDir())
	fmt.Printf("Backups dir:  %s\n", paths.BackupsDir())
	fmt.Printf("Workspace:    %s\n", cfg.WorkspaceDir)

	if !hostenv.AllRequiredOK(checks) {
		return fmt.Errorf("required dependencies are missing")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("devcrate version %s\n", version)
			fmt.Printf("Platform: %s\n", platform.Detect())
			fmt.Printf("Image: %s\n", constants.ImageName)
		},
	}
}
