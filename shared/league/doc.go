// Package league holds the rating and roster-legality rules of the draft:
// the salary-cap check, roster snapshots, the pick-frequency rating step,
// reconciliation of saved rosters against live coins, win/loss accounting
// and random matchup sampling. Everything here is pure; persistence lives
// in the services.
package league
