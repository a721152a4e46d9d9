// Package router talks to the web API of Huawei LTE routers (E5186, B525, ...).
//
// Only the calls the poller needs are implemented: session setup and login,
// device signal, traffic statistics and clearing the traffic counters.
package router
