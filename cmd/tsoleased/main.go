// Command tsoleased runs the lease-based master-election core as a
// standalone process: it acquires and renews a lease in Consul, resets
// TSO state and publishes this replica's coordinates on promotion, and
// serves /healthz and /metrics for the surrounding infrastructure to
// consult.
package main

func main() {
	Execute()
}
