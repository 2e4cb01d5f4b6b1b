// Package parley lets an autonomous process pause and exchange messages
// with humans over a persistent connection, with strongly typed
// question/answer exchanges.
//
// A Client manages conversations and participants through the service's
// REST API and opens live sessions over a websocket. Within a session,
// Log sends a one-way notification and Ask poses a structured question,
// suspending the caller until a participant answers:
//
//	sess, err := client.OpenSession(ctx, conv.ID)
//	...
//	resp, err := sess.Ask(ctx, "Deploy to production?", []contract.Input{
//		contract.Confirm("approved", "Approve deploy"),
//		contract.Text("notes", "Notes"),
//	})
//	if err == nil && resp.Bool("approved") {
//		...
//	}
package parley
