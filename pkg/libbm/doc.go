//
// libbm is client that interacts with bookmarkd API for backing up and restoring bookmarks.
//

// Create client
//
//	client, err := libbm.NewDefaultClient("https://bookmarks.nas.lan")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Authenticate
//
//	err = client.Login("george", "password42")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Backup the whole collection
//
//	collection, err := client.Export()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Restore it on another account
//
//	result, err := client.Import(collection)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.TabsImported, "tabs imported")
package libbm
