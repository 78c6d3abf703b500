// Package services implements the driving ports: crawling, extraction,
// heuristic and assisted classification, review, template sync and the
// pipeline that runs them in order. Services only talk to the outside
// world through the driven ports.
package services
