package main

import (
	"context"
	"net/http"
	"os"

	"shiftserver/events"
	"shiftserver/identity"
	"shiftserver/notifier"
	"shiftserver/push"
	"shiftserver/storage"
	"shiftserver/teamadmin"

	log "shiftserver/cloudlog"

	firebase "firebase.google.com/go"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// config holds the process configuration, read from the environment once in
// main and passed down. No package reads the environment on its own.
type config struct {
	ProjectID string
	Addr      string
	// RequestEventsSubscription is the Pub/Sub subscription carrying
	// constraint-request document change events.
	RequestEventsSubscription string
}

func loadConfig() config {
	// A missing .env file is fine; deployed environments set variables directly.
	godotenv.Load()

	cfg := config{
		ProjectID:                 os.Getenv("PROJECT_ID"),
		Addr:                      os.Getenv("ADDR"),
		RequestEventsSubscription: os.Getenv("REQUEST_EVENTS_SUBSCRIPTION"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":80"
	}
	if cfg.RequestEventsSubscription == "" {
		cfg.RequestEventsSubscription = "constraint_request_changes"
	}
	return cfg
}

func main() {
	cfg := loadConfig()
	log.Setup(cfg.ProjectID)

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatalf("initiate Firebase App failed: %+v", err)
	}
	store, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatalf("initiate Firestore client failed: %+v", err)
	}
	defer store.Close()
	ids, err := identity.New(ctx, app)
	if err != nil {
		log.Fatalf("initiate Firebase Auth failed: %+v", err)
	}
	sender, err := push.New(ctx, app)
	if err != nil {
		log.Fatalf("initiate FCM client failed: %+v", err)
	}

	notifiers := notifier.New(store, sender)
	listener, err := events.NewListener(ctx, cfg.ProjectID, cfg.RequestEventsSubscription, notifiers)
	if err != nil {
		log.Fatalf("initiate Pub/Sub listener failed: %+v", err)
	}
	go func() {
		if err := listener.Listen(ctx); err != nil {
			log.Fatalf("event listener stopped: %+v", err)
		}
	}()

	srv := &server{
		admin:    teamadmin.New(store, ids),
		verifier: ids,
	}
	router := mux.NewRouter()
	router.HandleFunc("/deleteTeamAndAllAccounts", srv.handleDeleteTeam).Methods(http.MethodPost)
	router.HandleFunc("/deleteStaffAccount", srv.handleDeleteStaffAccount).Methods(http.MethodPost)

	log.Println("Starting server at: http://" + cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, router))
}
