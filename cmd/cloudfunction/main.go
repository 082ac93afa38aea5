package main

// Deploy as a Cloud Function (gen2):
//   gcloud functions deploy journey-api --entry-point=HandleHTTP --trigger-http ...
//   gcloud functions deploy journey-uploads --entry-point=HandleUpload \
//     --trigger-event-filters=type=google.cloud.storage.object.v1.finalized ...

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"journey-backend/internal/bootstrap"
	"journey-backend/internal/shared/config"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
	trigger  *uploadTrigger
)

func init() {
	functions.HTTP("HandleHTTP", handleHTTP)
	functions.CloudEvent("HandleUpload", handleUpload)
}

// main is required by the Functions Framework.
func main() {}

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
	// Without a queue the instance is frozen as soon as the invocation returns, so jobs run
	// inside the request that starts them.
	if app.Queue == nil {
		app.JobsService.Inline = true
	}
	trigger = newUploadTrigger(app.Store, app.JobsService)
}

func handleHTTP(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		http.Error(w, `{"error":"bootstrap failed"}`, http.StatusInternalServerError)
		return
	}
	app.Router.ServeHTTP(w, r)
}

func handleUpload(ctx context.Context, e cloudevents.Event) error {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		return initErr
	}
	return trigger.Handle(ctx, e)
}
