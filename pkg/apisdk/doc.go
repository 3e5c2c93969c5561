// Package apisdk is the Go client for the dds2 broadcast API.
//
// It also owns the wire types: the server decodes requests into the *Input
// types and encodes responses from the resource types defined here, so the
// client and server cannot drift apart.
//
// Typical use:
//
//	c := apisdk.NewClient("http://localhost:8080")
//	if err := c.Login(ctx, "alice", "secret", ""); err != nil {
//		return err
//	}
//	tag, err := c.Tags().Create(ctx, apisdk.TagInput{
//		Tenant: apisdk.Ptr(tenantID),
//		Tag:    apisdk.Ptr("VIP Client"),
//	})
//
// Input types use pointer fields. A nil field is omitted from the request,
// which PATCH treats as "leave unchanged". Nullable references use an empty
// string to clear the reference.
package apisdk
