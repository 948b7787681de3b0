// Package gmail_tools declares the Gmail operation catalog and binds its
// handlers to a dispatcher.
//
// Every operation takes an optional account argument selecting the Google
// account; the handlers reach Gmail only through the MailService interface,
// resolved per account by a ServiceFunc.
//
// Authorization:
//   - gmail_auth_url, gmail_auth_token, gmail_auth_status
//
// Messages:
//   - gmail_send_email, gmail_create_draft, gmail_reply_to_email
//   - gmail_search_emails, gmail_get_email, gmail_get_thread
//   - gmail_modify_labels and the batch operations gmail_batch_modify_labels,
//     gmail_mark_read, gmail_mark_unread, gmail_archive_emails,
//     gmail_trash_emails and gmail_delete_emails
//   - gmail_list_attachments, gmail_download_attachment
//
// Settings:
//   - gmail_get_profile
//   - gmail_list_labels, gmail_create_label, gmail_delete_label
//   - gmail_list_filters, gmail_get_filter, gmail_create_filter, gmail_delete_filter
//
// Batch operations process their messageIds one at a time in input order.
// A failing item is recorded in the results list and never fails the whole
// call.
//
// Classify maps Gmail API errors to envelope codes and should be installed on
// the dispatcher with dispatch.WithClassifier.
package gmail_tools
