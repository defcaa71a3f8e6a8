/*
Package monitor implements the scheduled measurement-and-persist loop that
drives the application.

Key Components:

  - Monitor: owns the schedule and runs measurement cycles
  - Prober: capability that performs one live speed test
  - Sink: capability that durably stores a result
  - Archive: optional relational copy of results

Cycle Semantics:

A cycle is one probe → map → persist attempt. The first cycle runs
immediately when the loop starts; subsequent cycles run once per interval.
Cycles never overlap: a speed test saturates the network path, so a
concurrent cycle would corrupt the measurement it runs beside.

Failure Handling:

Probe and sink failures are terminal to the cycle, never to the process.
There is no retry or backoff inside a cycle; the next scheduled tick is the
retry mechanism. The only way the loop stops is cancellation of its context,
after which the sink is closed exactly once.

Usage Example:

	m := monitor.New(probe, sink, nil, time.Hour, "", logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m.Run(ctx)
*/
package monitor
