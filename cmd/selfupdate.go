package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const flagUpdateRepo = "update-repo"

// updateRepo is the GitHub repository (owner/name) releases are fetched
// from. Release builds set it with -ldflags "-X kofr/cmd.updateRepo=owner/name".
var updateRepo = ""

// newSelfUpdateCmd creates the Cobra command for the self-update functionality.
func newSelfUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update kofr to the latest version",
		Long: `Checks for the latest release of kofr on GitHub and
updates the current binary if a newer version is found.

The release repository is built into release binaries. Other builds need
--update-repo OWNER/NAME or KOFR_UPDATE_REPO.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, a.v.GetString(flagUpdateRepo))
		},
	}
	cmd.Flags().String(flagUpdateRepo, updateRepo, "GitHub repository (owner/name) to fetch releases from")
	_ = a.v.BindPFlag(flagUpdateRepo, cmd.Flags().Lookup(flagUpdateRepo))
	return cmd
}

// parseRepo checks that repo has the owner/name form.
func parseRepo(repo string) (selfupdate.RepositorySlug, error) {
	if repo == "" {
		return selfupdate.RepositorySlug{}, errors.New("no release repository configured: pass --update-repo OWNER/NAME or set KOFR_UPDATE_REPO")
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return selfupdate.RepositorySlug{}, fmt.Errorf("invalid release repository %q: expected OWNER/NAME", repo)
	}
	return selfupdate.NewRepositorySlug(owner, name), nil
}

// runSelfUpdate checks the current version against the latest GitHub release and updates if necessary.
func runSelfUpdate(cmd *cobra.Command, repo string) error {
	// Development builds don't follow semantic versioning.
	if version == "" || version == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	slug, err := parseRepo(repo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", version)
	fmt.Fprintln(out, "Checking for updates...")

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(cmd.Context(), slug)
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", repo)
	}

	if !latest.GreaterThan(version) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Fprintf(out, "Updating %s to version %s...\n", exe, latest.Version())
	if err := updater.UpdateTo(cmd.Context(), latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
