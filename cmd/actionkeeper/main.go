// Command actionkeeper records signed, hashed claims of real-world action in
// a tamper-evident ledger on the local device, without network access.
package main

func main() {
	Execute()
}
