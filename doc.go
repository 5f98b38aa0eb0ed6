// Package userauth implements a user-authentication backend built around
// mission-scoped JSON Web Tokens: registration with email confirmation,
// password-based login issuing access tokens, multi-factor token delivery,
// password recovery, and account deletion.
//
// Missions:
//   - Every token carries a Mission claim naming the single purpose it was
//     issued for. A MissionVerifier only accepts tokens whose mission matches
//     the operation it guards, and consumes mission tokens on first use so
//     they cannot be replayed before their natural expiry.
//
// Revocation:
//   - Consumed tokens are recorded in a TokenRevoker (Redis in production,
//     in-memory for tests) with a TTL equal to the token's remaining
//     lifetime, so the blacklist never outlives the tokens it rejects.
//     Access tokens are exempt and are never blacklisted.
//
// Lifecycle:
//   - The Reaper sweeps unconfirmed accounts on a fixed interval and removes
//     those whose registration-confirmation token could no longer be valid,
//     freeing their email address for re-registration.
package userauth
