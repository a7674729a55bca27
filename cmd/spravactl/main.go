package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/config"
	"github.com/sprava/spravaterm/internal/profile"
	"github.com/sprava/spravaterm/internal/session"
	"github.com/sprava/spravaterm/internal/store"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := profile.EnsureDir(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	db, err := store.Open(profile.StatePath(profileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	sess := session.New(db, bus.New(), logger)
	if err := sess.Restore(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(profile.ConfigPath())
	client := api.New(cfg.APIBaseURL, sess.Token, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		cmdLogin(ctx, client, sess, args[1:])
	case "signup":
		cmdSignup(ctx, client, sess, args[1:])
	case "logout":
		cmdLogout(sess)
	case "me":
		requireAuth(sess)
		cmdMe(ctx, client, *jsonFlag)
	case "conversations":
		requireAuth(sess)
		cmdConversations(ctx, client, *jsonFlag)
	case "messages":
		requireAuth(sess)
		cmdMessages(ctx, client, args[1:], *jsonFlag)
	case "send":
		requireAuth(sess)
		cmdSend(ctx, client, args[1:])
	case "friends":
		requireAuth(sess)
		cmdFriends(ctx, client, *jsonFlag)
	case "requests":
		requireAuth(sess)
		cmdRequests(ctx, client, args[1:], *jsonFlag)
	case "block":
		requireAuth(sess)
		cmdBlock(ctx, client, args[1:], true)
	case "unblock":
		requireAuth(sess)
		cmdBlock(ctx, client, args[1:], false)
	case "open":
		requireAuth(sess)
		cmdOpen(ctx, client, args[1:])
	case "delete":
		requireAuth(sess)
		cmdDelete(ctx, client, args[1:])
	case "user":
		requireAuth(sess)
		cmdUser(ctx, client, args[1:], *jsonFlag)
	case "profile":
		requireAuth(sess)
		cmdProfile(ctx, client, args[1:], *jsonFlag)
	case "account":
		requireAuth(sess)
		cmdAccount(ctx, client, args[1:])
	case "media":
		requireAuth(sess)
		cmdMedia(ctx, client, args[1:], *jsonFlag)
	case "attach":
		requireAuth(sess)
		cmdAttach(ctx, client, args[1:])
	case "avatar":
		requireAuth(sess)
		cmdAvatar(ctx, client, args[1:])
	case "config":
		cmdConfig(sess, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: spravactl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login <mail>                   Sign in (password prompted via SPRAVA_PASSWORD or stdin)")
	fmt.Fprintln(os.Stderr, "  signup <mail> <username>       Create an account and sign in")
	fmt.Fprintln(os.Stderr, "  logout                         Clear the stored credential")
	fmt.Fprintln(os.Stderr, "  me                             Show the authenticated account")
	fmt.Fprintln(os.Stderr, "  conversations                  List conversations")
	fmt.Fprintln(os.Stderr, "  messages <conversation-id>     Show the newest page of a conversation")
	fmt.Fprintln(os.Stderr, "  send <conversation-id> <text>  Send a message")
	fmt.Fprintln(os.Stderr, "  friends                        List friends")
	fmt.Fprintln(os.Stderr, "  requests [send|accept|reject]  List, send or resolve friend requests (verb takes <user-id>)")
	fmt.Fprintln(os.Stderr, "  block <user-id>                Block a user")
	fmt.Fprintln(os.Stderr, "  unblock <user-id>              Unblock a user")
	fmt.Fprintln(os.Stderr, "  open <user-id>                 Open a conversation with a user")
	fmt.Fprintln(os.Stderr, "  delete <message-id>            Delete one of your messages")
	fmt.Fprintln(os.Stderr, "  user <user-id>                 Show a user and their visible profile")
	fmt.Fprintln(os.Stderr, "  profile [set <field> <value>]  Show or update your profile")
	fmt.Fprintln(os.Stderr, "  account <field> <value>        Change username, mail, birthdate or password")
	fmt.Fprintln(os.Stderr, "  media <media-id> [out-file]    Show attachment metadata or download it")
	fmt.Fprintln(os.Stderr, "  attach <message-id> <file>     Attach a file to a sent message")
	fmt.Fprintln(os.Stderr, "  avatar <avatar-id> <out-file>  Download a user's avatar")
	fmt.Fprintln(os.Stderr, "  config theme|locale <value>    Set interface preferences")
}

func requireAuth(sess *session.Session) {
	if !sess.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "error: not signed in; run spravactl login first")
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdLogin(ctx context.Context, client *api.Client, sess *session.Session, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl login <mail>")
		os.Exit(1)
	}
	password := os.Getenv("SPRAVA_PASSWORD")
	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		if _, err := fmt.Scanln(&password); err != nil {
			fail(err)
		}
	}

	auth, err := client.Login(ctx, args[0], password)
	if err != nil {
		fail(err)
	}
	if err := sess.Login(auth.APIToken, session.Identity{UserID: auth.UserID, Username: auth.Username}); err != nil {
		fail(err)
	}
	fmt.Printf("signed in as %s (user %d)\n", auth.Username, auth.UserID)
}

func cmdLogout(sess *session.Session) {
	if err := sess.Logout(); err != nil {
		fail(err)
	}
	fmt.Println("signed out")
}

func cmdMe(ctx context.Context, client *api.Client, jsonOut bool) {
	me, err := client.FetchMe(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(me)
		return
	}
	fmt.Printf("User:     %s (id %d)\n", me.Username, me.UserID)
	fmt.Printf("Mail:     %s\n", me.Mail)
	if me.DateOfBirth != "" {
		fmt.Printf("Born:     %s\n", me.DateOfBirth)
	}
}

func cmdConversations(ctx context.Context, client *api.Client, jsonOut bool) {
	conversations, err := client.Conversations(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(conversations)
		return
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range conversations {
		unread := ""
		if c.UnreadCount > 0 {
			unread = fmt.Sprintf(" (%d unread)", c.UnreadCount)
		}
		fmt.Printf("%-6d %-20s %s%s\n", c.ID, c.OtherUsername, c.LastMessage, unread)
	}
}

func cmdMessages(ctx context.Context, client *api.Client, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl messages <conversation-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad conversation id %q", args[0]))
	}
	msgs, err := client.Messages(ctx, id, 50, 0)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(msgs)
		return
	}
	// Newest first from the service; print oldest first.
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		fmt.Printf("[%s] user %d: %s\n", m.CreatedAt, m.SenderID, m.Content)
	}
}

func cmdSend(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl send <conversation-id> <text>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad conversation id %q", args[0]))
	}
	msgID, err := client.SendMessage(ctx, id, args[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("sent message %d\n", msgID)
}

func cmdFriends(ctx context.Context, client *api.Client, jsonOut bool) {
	friends, err := client.Friends(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(friends)
		return
	}
	if len(friends) == 0 {
		fmt.Println("No friends yet.")
		return
	}
	for _, f := range friends {
		fmt.Printf("%-6d %s\n", f.UserID, f.Username)
	}
}

func cmdRequests(ctx context.Context, client *api.Client, args []string, jsonOut bool) {
	if len(args) >= 2 {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fail(fmt.Errorf("bad user id %q", args[1]))
		}
		switch args[0] {
		case "send":
			if err := client.SendFriendRequest(ctx, id); err != nil {
				fail(err)
			}
			fmt.Println("request sent")
		case "accept":
			if err := client.AcceptFriendRequest(ctx, id); err != nil {
				fail(err)
			}
			fmt.Println("accepted")
		case "reject":
			if err := client.RejectFriendRequest(ctx, id); err != nil {
				fail(err)
			}
			fmt.Println("rejected")
		default:
			fmt.Fprintln(os.Stderr, "usage: spravactl requests [send|accept|reject <user-id>]")
			os.Exit(1)
		}
		return
	}

	requests, err := client.FriendRequests(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(requests)
		return
	}
	if len(requests) == 0 {
		fmt.Println("No pending requests.")
		return
	}
	for _, r := range requests {
		fmt.Printf("from user %d (%s)\n", r.SenderID, r.CreatedAt)
	}
}

func cmdBlock(ctx context.Context, client *api.Client, args []string, block bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl block|unblock <user-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad user id %q", args[0]))
	}
	if block {
		if err := client.BlockUser(ctx, id); err != nil {
			fail(err)
		}
		fmt.Println("blocked")
		return
	}
	if err := client.UnblockUser(ctx, id); err != nil {
		fail(err)
	}
	fmt.Println("unblocked")
}

func cmdSignup(ctx context.Context, client *api.Client, sess *session.Session, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl signup <mail> <username> [date-of-birth]")
		os.Exit(1)
	}
	password := os.Getenv("SPRAVA_PASSWORD")
	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		if _, err := fmt.Scanln(&password); err != nil {
			fail(err)
		}
	}
	dateOfBirth := ""
	if len(args) >= 3 {
		dateOfBirth = args[2]
	}

	auth, err := client.Signup(ctx, args[0], args[1], password, dateOfBirth)
	if err != nil {
		fail(err)
	}
	if err := sess.Login(auth.APIToken, session.Identity{UserID: auth.UserID, Username: auth.Username}); err != nil {
		fail(err)
	}
	fmt.Printf("account created, signed in as %s (user %d)\n", auth.Username, auth.UserID)
}

func cmdOpen(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl open <user-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad user id %q", args[0]))
	}
	convID, err := client.CreateConversation(ctx, id)
	if err != nil {
		fail(err)
	}
	fmt.Printf("conversation %d\n", convID)
}

func cmdDelete(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl delete <message-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad message id %q", args[0]))
	}
	if err := client.DeleteMessage(ctx, id); err != nil {
		fail(err)
	}
	fmt.Println("deleted")
}

func cmdUser(ctx context.Context, client *api.Client, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl user <user-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad user id %q", args[0]))
	}
	user, err := client.FetchUser(ctx, id)
	if err != nil {
		fail(err)
	}
	prof, err := client.FetchUserProfile(ctx, id)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(map[string]any{"user": user, "profile": prof})
		return
	}
	fmt.Printf("User: %s (id %d)\n", user.Username, user.UserID)
	if prof.Bio != "" {
		fmt.Printf("Bio:      %s\n", prof.Bio)
	}
	if prof.Location != "" {
		fmt.Printf("Location: %s\n", prof.Location)
	}
	if prof.Website != "" {
		fmt.Printf("Website:  %s\n", prof.Website)
	}
	if prof.Mail != "" {
		fmt.Printf("Mail:     %s\n", prof.Mail)
	}
}

func cmdProfile(ctx context.Context, client *api.Client, args []string, jsonOut bool) {
	prof, err := client.MyProfile(ctx)
	if err != nil {
		fail(err)
	}

	if len(args) >= 3 && args[0] == "set" {
		switch args[1] {
		case "bio":
			prof.Bio = args[2]
		case "location":
			prof.Location = args[2]
		case "website":
			prof.Website = args[2]
		case "phone":
			prof.Phone = args[2]
		default:
			fmt.Fprintln(os.Stderr, "usage: spravactl profile set bio|location|website|phone <value>")
			os.Exit(1)
		}
		if err := client.UpdateProfile(ctx, prof); err != nil {
			fail(err)
		}
		fmt.Println("updated")
		return
	}

	if jsonOut {
		outputJSON(prof)
		return
	}
	fmt.Printf("Bio:      %s\n", prof.Bio)
	fmt.Printf("Location: %s\n", prof.Location)
	fmt.Printf("Website:  %s\n", prof.Website)
	fmt.Printf("Phone:    %s\n", prof.Phone)
}

func cmdAccount(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl account username|mail|birthdate|password <value>")
		os.Exit(1)
	}
	var err error
	switch args[0] {
	case "username":
		err = client.ChangeUsername(ctx, args[1])
	case "mail":
		err = client.ChangeMail(ctx, args[1])
	case "birthdate":
		err = client.ChangeDateOfBirth(ctx, args[1])
	case "password":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: spravactl account password <old> <new>")
			os.Exit(1)
		}
		err = client.ChangePassword(ctx, args[1], args[2])
	default:
		fmt.Fprintln(os.Stderr, "usage: spravactl account username|mail|birthdate|password <value>")
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
	fmt.Println("changed")
}

func cmdMedia(ctx context.Context, client *api.Client, args []string, jsonOut bool) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spravactl media <media-id> [out-file]")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad media id %q", args[0]))
	}

	if len(args) >= 2 {
		data, err := client.DownloadMedia(ctx, id)
		if err != nil {
			fail(err)
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			fail(err)
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), args[1])
		return
	}

	meta, err := client.MediaInfo(ctx, id)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(meta)
		return
	}
	fmt.Printf("File: %s\n", meta.FileName)
	fmt.Printf("Type: %s\n", meta.MimeType)
	fmt.Printf("Size: %d bytes\n", meta.Size)
}

func cmdAttach(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl attach <message-id> <file>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("bad message id %q", args[0]))
	}
	f, err := os.Open(args[1])
	if err != nil {
		fail(err)
	}
	defer func() { _ = f.Close() }()

	if err := client.UploadMedia(ctx, id, filepath.Base(args[1]), f); err != nil {
		fail(err)
	}
	fmt.Println("attached")
}

func cmdAvatar(ctx context.Context, client *api.Client, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl avatar <avatar-id> <out-file>")
		os.Exit(1)
	}
	data, err := client.Avatar(ctx, args[0])
	if err != nil {
		fail(err)
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), args[1])
}

func cmdConfig(sess *session.Session, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: spravactl config theme|locale <value>")
		os.Exit(1)
	}
	switch args[0] {
	case "theme":
		if args[1] != "dark" && args[1] != "light" {
			fail(fmt.Errorf("unknown theme %q", args[1]))
		}
		if err := sess.SetTheme(args[1]); err != nil {
			fail(err)
		}
	case "locale":
		if err := sess.SetLocale(args[1]); err != nil {
			fail(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: spravactl config theme|locale <value>")
		os.Exit(1)
	}
	fmt.Println("saved")
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
