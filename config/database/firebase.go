package database

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"MenuScout/config/environment"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// InitFirebase builds the Firestore client from the base64 service account
// in FIREBASE_CREDENTIALS_BASE64 and the project in FIREBASE_PROJECT_ID.
func InitFirebase(ctx context.Context) (*firestore.Client, error) {
	encodedCredentials := environment.GetFirebaseKey()
	if encodedCredentials == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_BASE64 environment variable is missing")
	}

	decodedCredentials, err := base64.StdEncoding.DecodeString(encodedCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firebase credentials: %w", err)
	}

	projectID := environment.GetFirebaseProjectID()
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID environment variable is missing")
	}

	config := &firebase.Config{
		ProjectID: projectID,
	}
	app, err := firebase.NewApp(ctx, config, option.WithCredentialsJSON(decodedCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	log.Info().Str("project", projectID).Msg("Firebase Firestore initialized successfully")
	return client, nil
}
