// Package gcp implements the "gcp" platform: jobs are documents in a
// Firestore collection and job files live in two Cloud Storage buckets.
//
// Clients are created by the caller and handed to the stores, which own them
// from then on. Both SDKs honour the FIRESTORE_EMULATOR_HOST and
// STORAGE_EMULATOR_HOST variables for local runs.
package gcp
