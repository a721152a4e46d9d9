// Package schedule parses the tick cadence and derives the interval between
// two activations, which the traffic accounting uses as its averaging window.
//
// Supported forms:
//   - Cron (crontab.guru-style): "*/5 * * * *", "@every 5m", "@hourly"
//   - Interval duration: "5m", "2h30m"
//   - Interval HH:MM: "00:05" (5 minutes), "01:30" (1 hour 30 minutes)
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
package schedule
