// Package market holds the wire types of the auth and studio services and
// thin typed wrappers over their endpoints.
//
// AuthAPI and StudioAPI take an *apiclient.Client each. Login and signup opt
// out of the token refresh protocol so a rejected login surfaces as a plain
// 401.
package market
