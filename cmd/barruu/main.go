// Command barruu is the terminal companion of the console gateway: the
// same facades driven from flags, sharing the on-disk session, so an
// operator can moderate apps or publish from a shell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/barruu/console/config"
	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/internal/core/session"
	logicv1 "github.com/barruu/console/internal/logic/v1"
)

const usage = `Usage: barruu <command> [flags]

Auth:
  register   -username -email -password
  login      -email -password
  logout
  whoami
  upgrade    [-website -bio]

Admin:
  stats
  users      [-role -search -page -limit]
  verify     -id
  delete-user -id
  apps       [-status -search -page -limit]
  app-status -id -from -to
  feature    -id
  activity   [-limit]

Developer:
  my-apps
  publish    -file -name -package -version -category [-short -desc]
  update-app -id [-file -name -package -version -category -short -desc]
  delete-app -id
  media      [-type]
  upload     -file -name -type [-desc]
  update-media -id [-name -desc]
  delete-media -id
`

type cli struct {
	auth      *logicv1.AuthService
	admin     *logicv1.AdminService
	developer *logicv1.DeveloperService
}

func main() {
	// The CLI logs only warnings; command output goes to stdout.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fail(fmt.Errorf("configuration: %w", err))
	}

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			fail(err)
		}
		sessionPath = p
	}
	store := session.NewFileStore(sessionPath)

	client := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Store:   store,
		Timeout: cfg.GetAPITimeoutDuration(),
	})
	authService := logicv1.NewAuthService(client, store)
	authService.LogoutOnNetworkError = cfg.Session.LogoutOnNetworkError

	app := &cli{
		auth:      authService,
		admin:     logicv1.NewAdminService(client),
		developer: logicv1.NewDeveloperService(client),
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fail(err)
	}
}

func (a *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.auth.Logout()
	case "whoami":
		return a.whoami(ctx)
	case "upgrade":
		return a.upgrade(ctx, args)
	case "stats":
		return a.stats(ctx)
	case "users":
		return a.users(ctx, args)
	case "verify":
		return a.verify(ctx, args)
	case "delete-user":
		return a.deleteUser(ctx, args)
	case "apps":
		return a.apps(ctx, args)
	case "app-status":
		return a.appStatus(ctx, args)
	case "feature":
		return a.feature(ctx, args)
	case "activity":
		return a.activity(ctx, args)
	case "my-apps":
		return a.myApps(ctx)
	case "publish":
		return a.publish(ctx, args)
	case "update-app":
		return a.updateApp(ctx, args)
	case "delete-app":
		return a.deleteApp(ctx, args)
	case "media":
		return a.media(ctx, args)
	case "upload":
		return a.upload(ctx, args)
	case "update-media":
		return a.updateMedia(ctx, args)
	case "delete-media":
		return a.deleteMedia(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	user, err := a.auth.Register(ctx, logicv1.Credentials{
		Username: *username, Email: *email, Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	user, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func (a *cli) whoami(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *cli) upgrade(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	website := fs.String("website", "", "Developer website")
	bio := fs.String("bio", "", "Developer bio")
	fs.Parse(args)

	user, err := a.auth.UpgradeToDeveloper(ctx, domain.DeveloperUpgrade{
		Website: *website, Bio: *bio,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Role is now %s\n", user.Role)
	return nil
}

func (a *cli) stats(ctx context.Context) error {
	stats, err := a.admin.Stats(ctx)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func (a *cli) users(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	role := fs.String("role", "", "Filter by role")
	search := fs.String("search", "", "Search term")
	page := fs.Int("page", 0, "Page number")
	limit := fs.Int("limit", 0, "Page size")
	fs.Parse(args)

	result, err := a.admin.Users(ctx, logicv1.UserListOptions{
		Role: domain.Role(*role), Search: *search, Page: *page, Limit: *limit,
	})
	if err != nil {
		return err
	}
	for _, u := range result.Data {
		fmt.Printf("%s  %-20s %-30s %s\n", u.ID, u.Username, u.Email, u.Role)
	}
	fmt.Printf("page %d/%d (%d total)\n", result.Pagination.Page, result.Pagination.Pages, result.Pagination.Total)
	return nil
}

func (a *cli) verify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	id := fs.String("id", "", "User ID")
	fs.Parse(args)

	user, err := a.admin.VerifyDeveloper(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Developer %s verified\n", user.Username)
	return nil
}

func (a *cli) deleteUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	id := fs.String("id", "", "User ID")
	fs.Parse(args)

	if err := a.admin.DeleteUser(ctx, *id); err != nil {
		return err
	}
	fmt.Println("User deleted")
	return nil
}

func (a *cli) apps(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apps", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	search := fs.String("search", "", "Search term")
	page := fs.Int("page", 0, "Page number")
	limit := fs.Int("limit", 0, "Page size")
	fs.Parse(args)

	result, err := a.admin.Apps(ctx, logicv1.AppListOptions{
		Status: domain.AppStatus(*status), Search: *search, Page: *page, Limit: *limit,
	})
	if err != nil {
		return err
	}
	for _, app := range result.Data {
		featured := " "
		if app.Featured {
			featured = "*"
		}
		fmt.Printf("%s %s %-25s %-30s %-9s %d downloads\n",
			featured, app.ID, app.Name, app.PackageID, app.Status, app.Downloads)
	}
	fmt.Printf("page %d/%d (%d total)\n", result.Pagination.Page, result.Pagination.Pages, result.Pagination.Total)
	return nil
}

func (a *cli) appStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("app-status", flag.ExitOnError)
	id := fs.String("id", "", "App ID")
	from := fs.String("from", "", "Current status")
	to := fs.String("to", "", "Target status")
	fs.Parse(args)

	app, err := a.admin.UpdateAppStatus(ctx, *id, domain.AppStatus(*from), domain.AppStatus(*to))
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", app.Name, app.Status)
	return nil
}

func (a *cli) feature(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feature", flag.ExitOnError)
	id := fs.String("id", "", "App ID")
	fs.Parse(args)

	app, err := a.admin.ToggleFeature(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("%s featured=%v\n", app.Name, app.Featured)
	return nil
}

func (a *cli) activity(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("activity", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Number of entries")
	fs.Parse(args)

	feed, err := a.admin.RecentActivity(ctx, *limit)
	if err != nil {
		return err
	}
	for _, entry := range feed {
		fmt.Printf("%s  %-20s %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Type, entry.Description)
	}
	return nil
}

func (a *cli) myApps(ctx context.Context) error {
	apps, err := a.developer.MyApps(ctx)
	if err != nil {
		return err
	}
	for _, app := range apps {
		fmt.Printf("%s %-25s v%-8s %-9s %d downloads\n", app.ID, app.Name, app.Version, app.Status, app.Downloads)
	}
	return nil
}

func (a *cli) publish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	draft, file := draftFlags(fs)
	fs.Parse(args)

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open package file: %w", err)
	}
	defer f.Close()

	app, err := a.developer.PublishApp(ctx, *draft, filepath.Base(*file), f)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted %s (%s), status %s\n", app.Name, app.ID, app.Status)
	return nil
}

func (a *cli) updateApp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-app", flag.ExitOnError)
	id := fs.String("id", "", "App ID")
	draft, file := draftFlags(fs)
	fs.Parse(args)

	var pkg io.Reader
	filename := ""
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open package file: %w", err)
		}
		defer f.Close()
		pkg, filename = f, filepath.Base(*file)
	}

	app, err := a.developer.UpdateApp(ctx, *id, *draft, filename, pkg)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s, status %s\n", app.Name, app.Status)
	return nil
}

func (a *cli) deleteApp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-app", flag.ExitOnError)
	id := fs.String("id", "", "App ID")
	fs.Parse(args)

	if err := a.developer.DeleteApp(ctx, *id); err != nil {
		return err
	}
	fmt.Println("App deleted")
	return nil
}

func (a *cli) media(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("media", flag.ExitOnError)
	mediaType := fs.String("type", "", "Filter by type (image|video|audio)")
	fs.Parse(args)

	items, err := a.developer.MyMedia(ctx, domain.MediaType(*mediaType))
	if err != nil {
		return err
	}
	for _, m := range items {
		fmt.Printf("%s %-6s %-25s %8d bytes  %s\n", m.ID, m.Type, m.Name, m.Size, m.URL)
	}
	return nil
}

func (a *cli) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "Path of the asset to upload")
	name := fs.String("name", "", "Asset name")
	mediaType := fs.String("type", "", "Asset type (image|video|audio)")
	desc := fs.String("desc", "", "Description")
	fs.Parse(args)

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	media, err := a.developer.UploadMedia(ctx, domain.MediaUpload{
		Name: *name, Description: *desc, Type: domain.MediaType(*mediaType),
	}, filepath.Base(*file), f)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %s: %s\n", media.Name, media.URL)
	return nil
}

func (a *cli) updateMedia(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-media", flag.ExitOnError)
	id := fs.String("id", "", "Media ID")
	name := fs.String("name", "", "New name")
	desc := fs.String("desc", "", "New description")
	fs.Parse(args)

	media, err := a.developer.UpdateMedia(ctx, *id, domain.MediaUpdate{Name: *name, Description: *desc})
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", media.Name)
	return nil
}

func (a *cli) deleteMedia(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-media", flag.ExitOnError)
	id := fs.String("id", "", "Media ID")
	fs.Parse(args)

	if err := a.developer.DeleteMedia(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Media deleted")
	return nil
}

// draftFlags registers the shared app metadata flags.
func draftFlags(fs *flag.FlagSet) (*domain.AppDraft, *string) {
	draft := &domain.AppDraft{}
	fs.StringVar(&draft.Name, "name", "", "App name")
	fs.StringVar(&draft.PackageID, "package", "", "Package ID")
	fs.StringVar(&draft.Version, "version", "", "Version")
	fs.StringVar(&draft.Category, "category", "", "Category")
	fs.StringVar(&draft.ShortDescription, "short", "", "Short description")
	fs.StringVar(&draft.Description, "desc", "", "Full description")
	file := fs.String("file", "", "Path of the package file")
	return draft, file
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
