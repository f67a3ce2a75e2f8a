// Package services contains the application services of the actionkeeper
// client. CaptureService is the single write path for actions: it validates
// a payload, hashes its canonical form, signs the hash with the device key,
// stores the record, appends it to the ledger and checkpoints the ledger
// state hash. It also reads records back and audits the local store.
package services
