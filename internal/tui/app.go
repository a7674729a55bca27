package tui

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/cache"
	"github.com/sprava/spravaterm/internal/feed"
	"github.com/sprava/spravaterm/internal/i18n"
	"github.com/sprava/spravaterm/internal/refresh"
	"github.com/sprava/spravaterm/internal/session"
	"github.com/sprava/spravaterm/internal/transport"
	"github.com/sprava/spravaterm/internal/tui/ui"
	"github.com/sprava/spravaterm/internal/tui/views"
)

// App is the main TUI application shell.
type App struct {
	app   *tview.Application
	pages *tview.Pages
	theme *ui.Theme

	session   *session.Session
	client    *api.Client
	transport *transport.Transport
	router    *refresh.Router
	caches    *cache.Caches
	feeds     *feed.Manager
	bus       *bus.Bus
	logger    *zap.Logger

	statusBar   *views.StatusBar
	convList    *views.ConversationList
	threadView  *views.ThreadView
	composer    *views.Composer
	friendsView *views.FriendsView
	loginView   *views.LoginView

	// active is read from the event loop and the send goroutines while the
	// UI goroutine writes it, so every access goes through the accessors.
	amu    sync.Mutex
	active *api.Conversation

	ctx    context.Context
	cancel context.CancelFunc
}

// Deps bundles what the shell needs from the application container.
type Deps struct {
	Session   *session.Session
	Client    *api.Client
	Transport *transport.Transport
	Router    *refresh.Router
	Caches    *cache.Caches
	Feeds     *feed.Manager
	Bus       *bus.Bus
	Logger    *zap.Logger
	Profile   string
}

// NewApp creates the TUI application.
func NewApp(d Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.ThemeByName(d.Session.Theme())

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		theme:     theme,
		session:   d.Session,
		client:    d.Client,
		transport: d.Transport,
		router:    d.Router,
		caches:    d.Caches,
		feeds:     d.Feeds,
		bus:       d.Bus,
		logger:    d.Logger,
		statusBar: views.NewStatusBar(),
		composer:  views.NewComposer(),
		loginView: views.NewLoginView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.convList = views.NewConversationList(theme, d.Router.IsOnline)
	a.threadView = views.NewThreadView(theme)
	a.friendsView = views.NewFriendsView(theme, d.Router.IsOnline)

	a.statusBar.SetProfile(d.Profile)
	a.applyLocale(d.Session.Locale())
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) applyLocale(locale string) {
	a.convList.SetTitle(" " + i18n.T(locale, "conversations.title") + " ")
	a.friendsView.SetTitle(" " + i18n.T(locale, "friends.title") + " ")
	a.threadView.SetTypingLabel(i18n.T(locale, "thread.typing"))
	a.loginView.Form().SetTitle(" " + i18n.T(locale, "login.title") + " ")
	a.composer.SetPlaceholder(i18n.T(locale, "thread.placeholder"))
}

func (a *App) activeConv() *api.Conversation {
	a.amu.Lock()
	defer a.amu.Unlock()
	return a.active
}

func (a *App) setActive(c *api.Conversation) {
	a.amu.Lock()
	a.active = c
	a.amu.Unlock()
}

func (a *App) setupCallbacks() {
	a.convList.SetSelectedFunc(func(row, col int) {
		if conv := a.convList.Selected(); conv != nil {
			a.openConversation(*conv)
		}
	})

	a.composer.SetOnSend(func(text string) {
		conv := a.activeConv()
		if conv == nil {
			return
		}
		go func() {
			if _, err := a.client.SendMessage(a.ctx, conv.ID, text); err != nil {
				a.flash("Send failed: " + err.Error())
				return
			}
			a.refreshThread(conv.ID, false)
		}()
	})

	a.composer.SetOnTyping(
		func() {
			if conv := a.activeConv(); conv != nil {
				a.transport.SendTyping(conv.OtherUserID)
			}
		},
		func() {
			if conv := a.activeConv(); conv != nil {
				a.transport.SendStopTyping(conv.OtherUserID)
			}
		},
	)

	a.threadView.SetOnLoadMore(func() {
		conv := a.activeConv()
		if conv == nil {
			return
		}
		f := a.feeds.Get(conv.ID)
		if f == nil || f.Loading() || !f.HasMore() {
			return
		}
		go func() {
			if err := f.LoadMore(a.ctx); err != nil {
				a.flash("Load failed: " + err.Error())
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.threadView.UpdateAfterPrepend(f.Messages(), a.usernames(*conv))
			})
		}()
	})

	a.loginView.SetOnLogin(func(mail, password string) {
		go func() {
			auth, err := a.client.Login(a.ctx, mail, password)
			if err != nil {
				a.app.QueueUpdateDraw(func() { a.loginView.ShowError(err.Error()) })
				return
			}
			a.finishLogin(auth)
		}()
	})

	a.loginView.SetOnSignup(func(mail, username, password, dateOfBirth string) {
		go func() {
			auth, err := a.client.Signup(a.ctx, mail, username, password, dateOfBirth)
			if err != nil {
				a.app.QueueUpdateDraw(func() { a.loginView.ShowError(err.Error()) })
				return
			}
			a.finishLogin(auth)
		}()
	})
}

func (a *App) setupLayout() {
	threadFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.threadView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("conversations", a.convList, true, true)
	a.pages.AddPage("thread", threadFlex, true, false)
	a.pages.AddPage("friends", a.friendsView, true, false)
	a.pages.AddPage("login", a.loginView, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "thread":
				a.closeConversation()
				return nil
			case "friends":
				a.pages.SwitchToPage("conversations")
				a.app.SetFocus(a.convList)
				return nil
			}
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}
		if currentPage == "login" {
			return event
		}

		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'q':
				a.app.Stop()
				return nil
			case 'f':
				if currentPage == "conversations" {
					a.showFriends()
					return nil
				}
			case 'i':
				if currentPage == "thread" {
					a.app.SetFocus(a.composer.InputField)
					return nil
				}
			case 'a', 'r':
				if currentPage == "friends" {
					a.resolveFriendRequest(event.Rune() == 'a')
					return nil
				}
			}
		}

		// Scrolling up in a thread pulls older history once the viewport
		// nears the top.
		if currentPage == "thread" {
			switch event.Key() {
			case tcell.KeyUp, tcell.KeyPgUp:
				defer a.threadView.CheckLoadMore()
			}
		}

		return event
	})
}

func (a *App) openConversation(conv api.Conversation) {
	go func() {
		f, err := a.feeds.Open(a.ctx, conv.ID)
		if err != nil {
			a.flash("Load failed: " + err.Error())
			return
		}
		// Opening the thread clears its unread count.
		if err := a.client.MarkRead(a.ctx, conv.ID); err != nil {
			a.logger.Warn("mark read failed", zap.Int64("conversation_id", conv.ID), zap.Error(err))
		}
		a.transport.SendMarkRead(conv.ID)

		a.app.QueueUpdateDraw(func() {
			a.setActive(&conv)
			a.threadView.SetSelf(a.session.Identity().UserID)
			a.threadView.SetConversationTitle(conv.OtherUsername)
			a.threadView.SetTyping(false)
			a.threadView.Update(f.Messages(), a.usernames(conv))
			a.pages.SwitchToPage("thread")
			a.app.SetFocus(a.threadView)
		})
	}()
}

func (a *App) closeConversation() {
	if conv := a.activeConv(); conv != nil {
		a.feeds.Close(conv.ID)
		a.setActive(nil)
	}
	a.pages.SwitchToPage("conversations")
	a.app.SetFocus(a.convList)
}

func (a *App) showFriends() {
	go func() {
		if err := a.caches.Friends.Ensure(a.ctx); err != nil {
			a.flash("Load failed: " + err.Error())
		}
		if err := a.caches.FriendRequests.Ensure(a.ctx); err != nil {
			a.flash("Load failed: " + err.Error())
		}
		a.app.QueueUpdateDraw(func() {
			friends, _ := a.caches.Friends.Get()
			requests, _ := a.caches.FriendRequests.Get()
			a.friendsView.Update(friends, requests)
			a.pages.SwitchToPage("friends")
			a.app.SetFocus(a.friendsView)
		})
	}()
}

func (a *App) resolveFriendRequest(accept bool) {
	req := a.friendsView.SelectedRequest()
	if req == nil {
		return
	}
	go func() {
		var err error
		if accept {
			err = a.client.AcceptFriendRequest(a.ctx, req.SenderID)
		} else {
			err = a.client.RejectFriendRequest(a.ctx, req.SenderID)
		}
		if err != nil {
			a.flash("Request failed: " + err.Error())
			return
		}
		a.caches.Invalidate(a.ctx, "friend_requests")
		a.caches.Invalidate(a.ctx, "friends")
		a.app.QueueUpdateDraw(func() {
			friends, _ := a.caches.Friends.Get()
			requests, _ := a.caches.FriendRequests.Get()
			a.friendsView.Update(friends, requests)
		})
	}()
}

func (a *App) finishLogin(auth *api.AuthResponse) {
	id := session.Identity{UserID: auth.UserID, Username: auth.Username}
	if err := a.session.Login(auth.APIToken, id); err != nil {
		a.app.QueueUpdateDraw(func() { a.loginView.ShowError(err.Error()) })
		return
	}
	a.transport.SetCredential(auth.APIToken)
	go func() {
		if err := a.transport.Connect(a.ctx); err != nil {
			a.logger.Warn("connect after login failed", zap.Error(err))
		}
	}()
	a.caches.Preload(a.ctx)

	a.app.QueueUpdateDraw(func() {
		conversations, _ := a.caches.Conversations.Get()
		a.convList.Update(conversations)
		a.pages.SwitchToPage("conversations")
		a.app.SetFocus(a.convList)
	})
}

// usernames maps sender ids to display names for the active thread.
func (a *App) usernames(conv api.Conversation) map[int64]string {
	return map[int64]string{conv.OtherUserID: conv.OtherUsername}
}

func (a *App) refreshThread(conversationID int64, prepend bool) {
	f := a.feeds.Get(conversationID)
	if f == nil {
		return
	}
	if err := f.RefreshHead(a.ctx); err != nil {
		return
	}
	conv := a.activeConv()
	if conv == nil || conv.ID != conversationID {
		return
	}
	a.app.QueueUpdateDraw(func() {
		if prepend {
			a.threadView.UpdateAfterPrepend(f.Messages(), a.usernames(*conv))
		} else {
			a.threadView.Update(f.Messages(), a.usernames(*conv))
		}
	})
}

func (a *App) flash(msg string) {
	a.logger.Warn(msg)
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(msg)
	})
	time.AfterFunc(5*time.Second, func() {
		a.app.QueueUpdateDraw(func() { a.statusBar.SetFlash("") })
	})
}

// eventLoop reacts to bus events published by the router, the transport and
// the session, repainting whichever view shows the affected data.
func (a *App) eventLoop() {
	ch, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			a.handleBusEvent(evt)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleBusEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindScopeInvalidated:
		payload, ok := evt.Payload.(bus.ScopeInvalidated)
		if !ok {
			return
		}
		a.handleScope(payload.Scope)

	case bus.KindPresenceChanged:
		a.app.QueueUpdateDraw(func() {
			conversations, _ := a.caches.Conversations.Get()
			a.convList.Update(conversations)
			page, _ := a.pages.GetFrontPage()
			if page == "friends" {
				friends, _ := a.caches.Friends.Get()
				requests, _ := a.caches.FriendRequests.Get()
				a.friendsView.Update(friends, requests)
			}
		})

	case bus.KindTypingChanged:
		payload, ok := evt.Payload.(bus.TypingChanged)
		if !ok {
			return
		}
		conv := a.activeConv()
		if conv == nil || conv.OtherUserID != payload.UserID {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.threadView.SetTyping(payload.IsTyping)
			f := a.feeds.Get(conv.ID)
			if f != nil {
				a.threadView.Update(f.Messages(), a.usernames(*conv))
			}
		})

	case bus.KindTransportState:
		payload, ok := evt.Payload.(transport.StateChange)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetConnectionState(payload.To)
		})

	case bus.KindSessionLoggedOut:
		// Published both by an explicit logout and by the credential
		// rejection handler. Either way the only usable screen is login.
		a.setActive(nil)
		a.app.QueueUpdateDraw(func() {
			a.loginView.ShowError("Signed out. Please log in again.")
			a.pages.SwitchToPage("login")
			a.app.SetFocus(a.loginView.Form())
		})
	}
}

// handleScope repaints after the router reloaded a cache or a feed.
func (a *App) handleScope(scope string) {
	switch scope {
	case "conversations":
		a.app.QueueUpdateDraw(func() {
			conversations, _ := a.caches.Conversations.Get()
			a.convList.Update(conversations)
		})
	case "friends", "friend_requests":
		a.app.QueueUpdateDraw(func() {
			page, _ := a.pages.GetFrontPage()
			if page == "friends" {
				friends, _ := a.caches.Friends.Get()
				requests, _ := a.caches.FriendRequests.Get()
				a.friendsView.Update(friends, requests)
			}
		})
	default:
		conv := a.activeConv()
		if conv == nil || scope != refresh.MessagesScope(conv.ID) {
			return
		}
		f := a.feeds.Get(conv.ID)
		if f == nil {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.threadView.Update(f.Messages(), a.usernames(*conv))
		})
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	go a.eventLoop()

	if a.session.IsAuthenticated() {
		go func() {
			a.caches.Preload(a.ctx)
			a.app.QueueUpdateDraw(func() {
				conversations, _ := a.caches.Conversations.Get()
				a.convList.Update(conversations)
			})
		}()
	} else {
		a.pages.SwitchToPage("login")
		a.app.SetFocus(a.loginView.Form())
	}

	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
