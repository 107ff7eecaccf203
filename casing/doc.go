/*
Package casing converts identifiers between naming conventions.

It is used to derive partition names from model type names and to normalise
observer registry keys:

	casing.Snake("UserProfile")   // "user_profile"
	casing.Pascal("user_profile") // "UserProfile"
	casing.Camel("UserProfile")   // "userProfile"
*/
package casing
