/*
Package invitesdk provides a client SDK for the Brandhub invitation service.

# Overview

Client wraps the HTTP API. The remaining types are the client half of the
invitation lifecycle and are meant to be owned by a UI session:

  - PendingTracker: the last-fetched pending set of one organization,
    polled every minute and refreshed on change events
  - RealtimeListener: the organization's change stream, reconnected on drop
  - AcceptanceRedirector: completes at most one acceptance per sign-in

Create a Client with a token source for the signed-in user:

	client := invitesdk.NewClient("https://invites.example.com", tokenSource)

	// Pending invitations for an organization
	pending, err := client.ListPending(ctx, orgID)

	// Invite people (organization admins only)
	resp, err := client.SendInvitations(ctx, invitesdk.SendInvitationsRequest{...})

# Keeping a view fresh

The change stream is an invalidation signal and polling is the backstop.
Wire both:

	tracker := invitesdk.NewPendingTracker(client, orgID, orgName)
	tracker.Start()
	defer tracker.Close()

	listener := invitesdk.NewRealtimeListener(client, tracker.HandleChange)
	listener.Watch(orgID)
	defer listener.Close()

	if tracker.HasPendingInvitation("Alice@Example.com") {
		inv := tracker.GetInvitationStatus("alice@example.com")
		fmt.Println(inv.HoursUntilExpiration)
	}

Switching organization means a new tracker and listener.Watch(newOrgID);
Watch releases the old stream before it returns.

# Error Handling

Lifecycle errors are typed so callers can tell outcomes apart:

	pending, err := client.ListPending(ctx, orgID)
	var qf *invitesdk.QueryFailure
	if errors.As(err, &qf) {
		// state unknown, not empty
	}

	resp, err := client.SendInvitations(ctx, req)
	var partial *invitesdk.PartialInviteFailure
	if errors.As(err, &partial) {
		for _, e := range partial.Failed() {
			log.Printf("%s: %s", e.Email, e.Error)
		}
	}

Accepting an invitation the sweeper already expired reports not_pending;
IsNotPending detects it.

# Acceptance

Stash the ticket from an emailed link before sending the user to sign in,
then run the redirector after sign-in:

	stash := invitesdk.NewTicketStash(sessionStore)
	_ = stash.Put(ticket)

	// after sign-in
	r := invitesdk.NewAcceptanceRedirector(client, navigator, stash)
	state, err := r.OnSignIn(ctx)

Tickets older than MaxStashAge are dropped silently.
*/
package invitesdk
